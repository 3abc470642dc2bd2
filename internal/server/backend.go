package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/logging"
	"github.com/dmitrijs2005/fintab/internal/server/config"
	"github.com/dmitrijs2005/fintab/internal/server/mailer"
	"github.com/dmitrijs2005/fintab/internal/server/migrator"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/memory"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

// Backend is the storage and service graph shared by the server and the
// admin CLI.
type Backend struct {
	DB          *sql.DB
	Migrator    migrator.Migrator
	Credentials *services.CredentialService
	Sessions    *services.SessionService
	Activations *services.ActivationService
	Users       *services.UserService
	Status      *services.StatusService
}

// NewBackend opens the store selected by the config and builds the services
// on top of it.
func NewBackend(ctx context.Context, c *config.Config, logger logging.Logger) (*Backend, error) {
	mail, err := newMailer(c, logger)
	if err != nil {
		return nil, err
	}

	b := &Backend{}

	var (
		tx    dbx.Transactor
		repos repomanager.RepositoryManager
	)
	if c.UsesMemoryStore() {
		store := memory.NewStore()
		tx = store
		repos = repomanager.NewMemoryRepositoryManager(store)
		b.Migrator = migrator.Nop{}
		logger.Warn(ctx, "using the in-memory store, data is lost on exit")
	} else {
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		b.DB = db
		tx = dbx.NewSQLTransactor(db)
		repos = repomanager.NewPostgresRepositoryManager()
		b.Migrator = migrator.New(db)
	}


	b.Credentials = services.NewCredentialService(tx, repos, c.BcryptCost)
	b.Sessions = services.NewSessionService(tx, repos, c.SessionTTL)
	b.Activations = services.NewActivationService(tx, repos, c.ActivationTokenTTL, mail, c.MailFrom, c.WebOrigin)
	b.Users = services.NewUserService(tx, repos, b.Credentials)
	b.Status = services.NewStatusService(tx, repos)
	return b, nil
}

// ErrNoSMTPInProduction stops a production server that would otherwise log
// activation links instead of mailing them.
var ErrNoSMTPInProduction = errors.New("an SMTP address is required in production")

func newMailer(c *config.Config, logger logging.Logger) (mailer.Sender, error) {
	switch {
	case c.SMTPAddr != "":
		return mailer.NewSMTPSender(c.SMTPAddr), nil
	case c.IsProduction():
		return nil, ErrNoSMTPInProduction
	default:
		return mailer.NewLogSender(logger), nil
	}
}

// Close releases the database pool, if any.
func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
