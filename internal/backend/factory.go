package backend

import (
	"context"
	"errors"
	"fmt"

	"carteira/internal/amqp"
	"carteira/internal/log"
	"carteira/internal/mail"
	"carteira/internal/services"
	"carteira/internal/sheets"
	gsheet "carteira/internal/sheets/google"
	sheetsmem "carteira/internal/sheets/memory"
	"carteira/internal/storage"
	"carteira/internal/storage/memory"
)

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentStorage)}
}

// Create opens the store and, when AMQP is configured, the event client.
// An unreachable broker is logged and events stay disabled.
func (f *Factory) Create(cfg Config) (*Result, error) {
	store, err := f.createStore(cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{Store: store}
	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			client = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			// Assigned only when non-nil so the interface stays nil otherwise.
			res.Events = client
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if client != nil {
			errs = append(errs, client.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}
	return res, nil
}

func (f *Factory) createStore(cfg Config) (services.Store, error) {
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Warn("Using in-memory backend, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

// Consumer opens an AMQP client for the worker. AMQP is required there.
func (f *Factory) Consumer(cfg Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		return nil, errors.New("AMQP_URL is required for the worker")
	}
	return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
}

// Mirror returns the Google Sheets mirror, or an in-memory one that only
// logs when the sheet is not configured.
func (f *Factory) Mirror(ctx context.Context, cfg Config) (sheets.TransactionMirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		f.logger.Info("Google Sheets not configured, mirroring to memory")
		return sheetsmem.New(), nil
	}
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets mirror", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return cli, nil
}

// Mailer returns an SMTP sender, or one that logs messages when SMTP is off.
func (f *Factory) Mailer(cfg Config) mail.Sender {
	if cfg.SMTPHost == "" {
		f.logger.Info("SMTP not configured, mail will be logged only")
		return mail.LogMailer{Logger: f.logger.WithComponent(log.ComponentMail)}
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	})
}
