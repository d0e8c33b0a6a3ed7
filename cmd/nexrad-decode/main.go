package main

import (
	"os"
	"runtime"
	"runtime/pprof"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/jddeal/nexrad-level2/archive2"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

type options struct {
	Args struct {
		Filenames []string `positional-arg-name:"filename"`
	} `positional-args:"yes" required:"yes"`
	LogLevel         string   `short:"l" long:"log-level" description:"logging level" choice:"error" choice:"info" choice:"debug" choice:"trace" default:"info"`
	ShowVolumeHeader bool     `long:"show-volume-header" description:"dumps out the contents of the Volume Header"`
	ShowVCP          bool     `long:"show-vcp" description:"dumps out the volume coverage pattern"`
	Moments          []string `short:"m" long:"moments" description:"only decode these moments (REF, VEL, SW, ZDR, PHI, RHO), repeatable"`
	CPUProfile       string   `long:"cpuprofile" description:"write a cpu profile, inspect with go tool pprof"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the exit code so deferred cleanup, like flushing the cpu profile, happens before exiting
func run(args []string) int {
	var cli options

	// parse the input args
	_, err := flags.ParseArgs(&cli, args)
	if err != nil {
		return 1
	}

	// set the logging level
	errorLevels := map[string]logrus.Level{
		"error": logrus.ErrorLevel,
		"info":  logrus.InfoLevel,
		"debug": logrus.DebugLevel,
		"trace": logrus.TraceLevel,
	}
	logrus.SetLevel(errorLevels[cli.LogLevel])

	opts, err := decodeOptions(cli.Moments)
	if err != nil {
		logrus.Error(err)
		return 1
	}

	if cli.CPUProfile != "" {
		f, err := os.Create(cli.CPUProfile)
		if err != nil {
			logrus.Error(err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logrus.Errorf("unable to start cpu profile: %v", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	// a progress bar only makes sense over several files, and only when the logs stay quiet
	var bar *pb.ProgressBar
	if len(cli.Args.Filenames) > 1 && logrus.GetLevel() <= logrus.InfoLevel {
		bar = pb.New(len(cli.Args.Filenames)).SetWriter(os.Stderr).Start()
		opts.Logger = archive2.DiscardLogger()
	}

	// files are independent, decode them in parallel and report in argument order
	summaries := make([]summary, len(cli.Args.Filenames))
	errs := make([]error, len(cli.Args.Filenames))
	sem := make(chan struct{}, runtime.NumCPU())
	wg := sync.WaitGroup{}
	for i, fn := range cli.Args.Filenames {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, fn string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			if bar == nil {
				logrus.Info(color.CyanString("decoding %s", fn))
			}
			summaries[i], errs[i] = decodeFile(fn, opts)
			if bar != nil {
				bar.Increment()
			}
		}(i, fn)
	}
	wg.Wait()
	if bar != nil {
		bar.Finish()
	}

	failed := false
	for i, err := range errs {
		if err != nil {
			logrus.Errorf("%s: %v", cli.Args.Filenames[i], err)
			failed = true
		}
	}

	for i, s := range summaries {
		if errs[i] == nil {
			s.write(os.Stdout, cli.ShowVolumeHeader, cli.ShowVCP)
		}
	}
	if failed {
		return 1
	}
	return 0
}
