// Program stoplight runs a traffic light and a group of waiters that pass
// through it each time it changes to go.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// version is set using build flags.
var version = "develop"

func main() {
	log := logrus.Logger{
		Out:       os.Stdout,
		Formatter: &logrus.TextFormatter{FullTimestamp: true},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	if err := newRootCmd(&log).Execute(); err != nil {
		log.Errorf("main: ERROR: %s", err)
		os.Exit(1)
	}
}
