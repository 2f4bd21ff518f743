package service

import (
	"context"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Ledger interface {
		Record(ctx context.Context, tx model.Transaction) (model.Block, error)
		Chain() []model.Block
	}
)
