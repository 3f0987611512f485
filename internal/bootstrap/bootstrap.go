package bootstrap

import (
	"context"
	"log/slog"

	gcpkms "cloud.google.com/go/kms/apiv1"
	"firebase.google.com/go/v4/auth"
	"github.com/jackc/pgx/v5/pgxpool"

	plaidclient "github.com/finflowhq/finflow-backend/internal/client/plaid"
	vertexclient "github.com/finflowhq/finflow-backend/internal/client/vertex"
	"github.com/finflowhq/finflow-backend/internal/config"
	"github.com/finflowhq/finflow-backend/pkg/logger"
)

type Bootstrap struct {
	Log           *slog.Logger
	Pool          *pgxpool.Pool
	Firebase      *auth.Client
	KMS           *gcpkms.KeyManagementClient
	VertexAdapter *vertexclient.Adapter
	PlaidAdapter  *plaidclient.Adapter
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)

	bs.Pool, err = InitPostgres(applicationCtx, cfg.DatabaseURL)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.KMS, err = gcpkms.NewKeyManagementClient(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.VertexAdapter, err = vertexclient.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel, cfg.VertexTimeout)
	if err != nil {
		return bs, err
	}
	bs.PlaidAdapter = plaidclient.NewAdapter(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnvironment)

	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.Pool != nil {
		bs.Pool.Close()
	}
	if bs.KMS != nil {
		bs.KMS.Close()
	}
	if bs.VertexAdapter != nil {
		bs.VertexAdapter.Close()
	}
}
