package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fintab/internal/logging"
	"github.com/dmitrijs2005/fintab/internal/server/config"
	"github.com/dmitrijs2005/fintab/internal/server/mailer"
	"github.com/dmitrijs2005/fintab/internal/server/migrator"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = config.MemoryDSN
	return c
}

func TestNewMailer(t *testing.T) {
	c := memoryConfig()

	m, err := newMailer(c, logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogSender{}, m)

	c.SMTPAddr = "smtp.fintab.com.br:587"
	c.Environment = "production"
	m, err = newMailer(c, logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &mailer.SMTPSender{}, m)
}

func TestNewBackend_ProductionRequiresSMTP(t *testing.T) {
	c := memoryConfig()
	c.Environment = "production"

	b, err := NewBackend(context.Background(), c, logging.Nop())
	require.ErrorIs(t, err, ErrNoSMTPInProduction)
	assert.Nil(t, b)
}

func TestNewBackend_Memory(t *testing.T) {
	b, err := NewBackend(context.Background(), memoryConfig(), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Nil(t, b.DB)
	assert.Equal(t, migrator.Nop{}, b.Migrator)
	assert.Equal(t, memoryConfig().SessionTTL, b.Sessions.TTL())
}
