package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/conselho/apps/api/echo"
	"github.com/trezcool/conselho/core"
	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/session"
	logsvc "github.com/trezcool/conselho/services/logger"
	"github.com/trezcool/conselho/services/spreadsheet"
	inmemdb "github.com/trezcool/conselho/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	if conf.Password == "" {
		logger.Warn("no access password configured: set `password` in config/secrets.toml")
	}

	db := inmemdb.Open()
	sessSvc := session.NewService(inmemdb.NewSessionRepository(db), conf)

	batchLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "EXTRACT : ", log.LstdFlags|log.Lmicroseconds),
		conf,
	)
	batchLogger.Enable(!conf.Debug)
	batch := grade.NewBatch(
		grade.NewExtractor(grade.RulesFromConfig(conf.Extract)),
		spreadsheet.NewExcelReader(),
		batchLogger,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			SessionSvc: sessSvc,
			Batch:      batch,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
