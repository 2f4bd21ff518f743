// Package console runs the interactive ledger session used by the command-line front end.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/emission"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/ledger"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/service"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/verify"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

const (
	cmdAdd    = "add"
	cmdShow   = "show"
	cmdVerify = "verify"
	cmdExit   = "exit"

	otherMachine = "其他 (自行輸入)"
)

// Session is one operator session over a ledger.
type Session struct {
	ledger   Ledger
	prompter Prompter
	out      io.Writer
	logger   *zap.Logger
	now      func() time.Time
}

func NewSession(l Ledger, p Prompter, out io.Writer, logger *zap.Logger) (*Session, error) {
	if l == nil {
		return nil, errors.New("session ledger is required")
	}
	if p == nil {
		return nil, errors.New("session prompter is required")
	}
	return &Session{ledger: l, prompter: p, out: out, logger: logger, now: time.Now}, nil
}

// Run reads commands until exit, end of input or ctx cancellation. Bad input and
// ledger failures are reported to the operator and the loop goes on.
func (s *Session) Run(ctx context.Context) error {
	s.info("目前鏈長度：%d", len(s.ledger.Chain()))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		answer, err := s.prompter.Ask("請輸入指令 [add: 新增交易並挖礦, show: 顯示交易, verify: 驗證鏈, exit: 離開]")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case cmdAdd:
			err = s.add(ctx)
		case cmdShow:
			err = s.show()
		case cmdVerify:
			s.verify(ctx)
		case cmdExit:
			pterm.Fprintln(s.out, "程式結束")
			return nil
		default:
			s.fail("無效指令，請重新輸入")
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) add(ctx context.Context) error {
	s.info("系統已自動記錄日期：%s", model.FormatDate(s.now()))

	machine, err := s.machine()
	if err != nil {
		return err
	}
	fertilizer, err := s.prompter.Ask("肥料")
	if err != nil {
		return err
	}
	amount, err := s.amount()
	if err != nil {
		return err
	}

	block, err := s.ledger.Submit(ctx, service.SubmitRequest{
		Machine:    model.Machine(machine),
		Fertilizer: fertilizer,
		Amount:     amount,
	})
	switch {
	case err == nil:
		pterm.Fprintln(s.out, pterm.Success.Sprintf("交易已加入區塊 %d 並挖出新區塊", block.Index))
	case errors.Is(err, ledger.ErrNotPersisted):
		s.logger.Warn("block not persisted", zap.Int("block_index", block.Index), zap.Error(err))
		pterm.Fprintln(s.out, pterm.Warning.Sprintf("交易已加入區塊 %d，但尚未寫入遠端儲存", block.Index))
	default:
		s.logger.Error("submit transaction", zap.Error(err))
		s.fail("交易無法寫入：%v", err)
	}
	return nil
}

func (s *Session) machine() (string, error) {
	options := make([]string, 0, len(emission.Machines())+1)
	for _, m := range emission.Machines() {
		options = append(options, string(m))
	}
	options = append(options, otherMachine)

	choice, err := s.prompter.Choose("機器", options)
	if err != nil {
		return "", err
	}
	if choice != otherMachine {
		return choice, nil
	}
	return s.prompter.Ask("機器名稱")
}

func (s *Session) amount() (float64, error) {
	for {
		raw, err := s.prompter.Ask("使用量(數字)")
		if err != nil {
			return 0, err
		}
		amount, err := service.ParseAmount(raw)
		if err == nil {
			return amount, nil
		}
		s.fail("請輸入有效數字")
	}
}

func (s *Session) show() error {
	listing := s.ledger.List()

	pterm.Fprintln(s.out, "\n===== 交易紀錄 =====")
	if len(listing.Transactions) == 0 {
		pterm.Fprintln(s.out, "目前沒有交易紀錄")
	} else {
		data := pterm.TableData{{"區塊", "日期", "機器", "肥料", "使用量", "排放"}}
		for _, v := range listing.Transactions {
			data = append(data, []string{
				strconv.Itoa(v.BlockIndex),
				v.Date,
				string(v.Machine),
				v.Fertilizer,
				strconv.FormatFloat(v.Amount, 'f', -1, 64),
				strconv.FormatFloat(v.Emission, 'f', -1, 64),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return fmt.Errorf("render transactions: %w", err)
		}
		pterm.Fprintln(s.out, table)
	}
	pterm.Fprintln(s.out, pterm.Sprintf("累計碳排放量: %.2f kg CO₂", listing.TotalEmission))
	return nil
}

func (s *Session) verify(ctx context.Context) {
	report, err := s.ledger.Verify(ctx)
	var violation *verify.Violation
	switch {
	case err == nil:
		pterm.Fprintln(s.out, pterm.Success.Sprintf("鏈驗證通過：%d 個區塊，%d 筆交易，末端雜湊 %s",
			report.Blocks, report.Transactions, report.TipHash))
	case errors.As(err, &violation):
		s.fail("鏈驗證失敗：%v", violation)
	default:
		s.logger.Error("verify chain", zap.Error(err))
		s.fail("無法驗證：%v", err)
	}
}

func (s *Session) info(format string, args ...any) {
	pterm.Fprintln(s.out, pterm.Info.Sprintf(format, args...))
}

func (s *Session) fail(format string, args ...any) {
	pterm.Fprintln(s.out, pterm.Error.Sprintf(format, args...))
}
