package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// NonBlockingReader provides context-aware input reading that can be
// interrupted by cancellation.
type NonBlockingReader struct {
	reader      *bufio.Reader
	readingLock sync.Mutex
}

// NewNonBlockingReader creates a new non-blocking reader.
func NewNonBlockingReader(reader io.Reader) *NonBlockingReader {
	if reader == nil {
		panic("reader cannot be nil")
	}
	return &NonBlockingReader{
		reader: bufio.NewReader(reader),
	}
}

// ReadString reads a string until delimiter, respecting context cancellation.
func (r *NonBlockingReader) ReadString(ctx context.Context, delim byte) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString(delim)
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		// The reading goroutine runs to completion, but the caller
		// returns immediately.
		return "", ErrInputCancelled
	case res := <-resultCh:
		return res.value, res.err
	}
}

// ReadLine reads a line, respecting context cancellation.
func (r *NonBlockingReader) ReadLine(ctx context.Context) (string, error) {
	line, err := r.ReadString(ctx, '\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ParseBalanceFlag parses one "label=amount" flag value into an account
// balance snapshot.
func ParseBalanceFlag(value string) (model.AccountBalance, error) {
	label, amount, found := strings.Cut(value, "=")
	label = strings.TrimSpace(label)
	amount = strings.TrimSpace(amount)
	if !found || label == "" || amount == "" {
		return model.AccountBalance{}, fmt.Errorf("invalid balance %q, expected label=amount", value)
	}

	parsed, err := model.NormalizeAmount(amount)
	if err != nil {
		return model.AccountBalance{}, fmt.Errorf("invalid balance amount %q: %w", amount, err)
	}

	return model.AccountBalance{Account: label, Amount: parsed}, nil
}

// ReadAccountBalances prompts for account balance snapshots interactively,
// one "label amount" pair per line, until a blank line or EOF. Unparseable
// lines are re-prompted, never silently dropped.
func ReadAccountBalances(ctx context.Context, reader *NonBlockingReader, out io.Writer) ([]model.AccountBalance, error) {
	fmt.Fprintln(out, PromptStyle.Render("Enter account balances (\"label amount\" per line, blank line to finish):"))

	var balances []model.AccountBalance
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadLine(ctx)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return balances, nil
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			fmt.Fprintln(out, FormatWarning("expected \"label amount\", try again"))
			continue
		}

		amount, err := decimal.NewFromString(fields[len(fields)-1])
		if err != nil {
			fmt.Fprintln(out, FormatWarning(fmt.Sprintf("invalid amount %q, try again", fields[len(fields)-1])))
			continue
		}

		balances = append(balances, model.AccountBalance{
			Account: strings.Join(fields[:len(fields)-1], " "),
			Amount:  amount,
		})
	}
}
