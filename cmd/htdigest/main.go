// Package main is the htdigest command: it creates and updates
// digest-authentication password files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/fdscope"
	"github.com/hupe1980/fdscope/internal/htdigest"
	"github.com/hupe1980/fdscope/pool"
)

var (
	create  = flag.Bool("c", false, "create a new file")
	verbose = flag.Bool("v", false, "log file handle activity to stderr")
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: htdigest [-c] passwordfile realm username")
	fmt.Fprintln(os.Stderr, "The -c flag creates a new file.")
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 3 {
		usage()
	}

	p := pool.New(nil)

	stdin := fdscope.Stdin(p)
	stdout := fdscope.Stdout(p)
	stderr := fdscope.Stderr(p)
	term := newTerminal(stdin, stderr)

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupted
		term.restore()
		fmt.Fprintln(stderr, "\nInterrupted.")
		p.Destroy()
		os.Exit(1)
	}()

	o := htdigest.Options{
		Create: *create,
		File:   flag.Arg(0),
		Realm:  flag.Arg(1),
		User:   flag.Arg(2),
		Prompt: term.password,
		Out:    stdout,
	}
	if *verbose {
		o.Logger = fdscope.NewTextLogger(slog.LevelDebug)
	}

	err := htdigest.Run(p, o)
	p.Destroy()
	if err != nil {
		if errors.Is(err, htdigest.ErrMismatch) {
			fmt.Fprintln(os.Stderr, "They don't match, sorry.")
		} else {
			fmt.Fprintf(os.Stderr, "htdigest: %v\n", err)
		}
		os.Exit(1)
	}
}
