package console

import (
	"context"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/service"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/verify"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Ledger interface {
		Submit(ctx context.Context, req service.SubmitRequest) (model.Block, error)
		List() service.Listing
		Chain() []model.Block
		Verify(ctx context.Context) (verify.Report, error)
	}

	// Prompter reads one answer from the operator. Implementations return io.EOF once
	// input is exhausted.
	Prompter interface {
		Ask(prompt string) (string, error)
		Choose(prompt string, options []string) (string, error)
	}
)
