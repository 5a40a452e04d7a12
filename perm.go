package fdscope

// Perm is a portable permission set. Bit values are independent of the host
// mode_t layout; Mode translates them.
type Perm uint32

const (
	// SetUID sets the user ID on execution.
	SetUID Perm = 0x8000
	// UserRead allows the owner to read.
	UserRead Perm = 0x0400
	// UserWrite allows the owner to write.
	UserWrite Perm = 0x0200
	// UserExecute allows the owner to execute.
	UserExecute Perm = 0x0100

	// SetGID sets the group ID on execution.
	SetGID Perm = 0x4000
	// GroupRead allows the group to read.
	GroupRead Perm = 0x0040
	// GroupWrite allows the group to write.
	GroupWrite Perm = 0x0020
	// GroupExecute allows the group to execute.
	GroupExecute Perm = 0x0010

	// Sticky restricts deletion in directories to the owner.
	Sticky Perm = 0x2000
	// WorldRead allows everyone to read.
	WorldRead Perm = 0x0004
	// WorldWrite allows everyone to write.
	WorldWrite Perm = 0x0002
	// WorldExecute allows everyone to execute.
	WorldExecute Perm = 0x0001

	// OSDefault asks for DefaultMode, filtered by the process umask.
	OSDefault Perm = 0x0FFF
)

// DefaultMode is the mode used for OSDefault.
const DefaultMode uint32 = 0o666

var permBits = [...]struct {
	perm Perm
	mode uint32
}{
	{SetUID, 0o4000},
	{UserRead, 0o400},
	{UserWrite, 0o200},
	{UserExecute, 0o100},
	{SetGID, 0o2000},
	{GroupRead, 0o040},
	{GroupWrite, 0o020},
	{GroupExecute, 0o010},
	{Sticky, 0o1000},
	{WorldRead, 0o004},
	{WorldWrite, 0o002},
	{WorldExecute, 0o001},
}

// Mode returns the unix mode bits for p.
func (p Perm) Mode() uint32 {
	if p == OSDefault {
		return DefaultMode
	}
	var mode uint32
	for _, b := range permBits {
		if p&b.perm != 0 {
			mode |= b.mode
		}
	}
	return mode
}

// PermFromMode is the inverse of Mode.
func PermFromMode(mode uint32) Perm {
	var p Perm
	for _, b := range permBits {
		if mode&b.mode != 0 {
			p |= b.perm
		}
	}
	return p
}
