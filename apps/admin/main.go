package main

import (
	"log"
	"os"

	"github.com/trezcool/conselho/core"
	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/session"
	logsvc "github.com/trezcool/conselho/services/logger"
	"github.com/trezcool/conselho/services/spreadsheet"
	inmemdb "github.com/trezcool/conselho/storage/database/inmem"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds),
		conf,
	)
	logger.Enable(false)

	// start CLI
	cli := commandLine{
		batch: grade.NewBatch(
			grade.NewExtractor(grade.RulesFromConfig(conf.Extract)),
			spreadsheet.NewExcelReader(),
			logger,
		),
		sessSvc: session.NewService(inmemdb.NewSessionRepository(inmemdb.Open()), conf),
		out:     os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("error: " + err.Error())
		}
		os.Exit(1)
	}
}
