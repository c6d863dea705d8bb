// Command cli is an interactive, line-oriented front end for the trading
// platform: whitespace-tokenised commands, quoted multi-word signer names,
// and an unsigned integer amount required last. It holds no matching or
// ledger logic of its own: it parses a line, calls the platform, and
// formats the result or error as a line of output.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"unicode"

	tomb "gopkg.in/tomb.v2"

	"order-matching-engine/internal/orders"
	"order-matching-engine/internal/platform"
)

func main() {
	p := platform.New()
	var mu sync.Mutex

	var t tomb.Tomb
	t.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigCh:
			return nil
		case <-t.Dying():
			return nil
		}
	})

	fmt.Println("trading platform CLI (type 'help' for commands, 'quit' to exit)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		select {
		case <-t.Dying():
			fmt.Println("shutdown signal received, exiting")
			return
		default:
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens, err := tokenize(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		if tokens[0] == "quit" || tokens[0] == "exit" {
			t.Kill(nil)
			break
		}

		mu.Lock()
		dispatch(p, tokens)
		mu.Unlock()
	}

	t.Kill(nil)
	_ = t.Wait()
}

// tokenize splits a line on whitespace, honoring double-quoted substrings
// (for multi-word signer names) as single tokens.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	hasToken := false

	flush := func() {
		if hasToken {
			tokens = append(tokens, current.String())
			current.Reset()
			hasToken = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasToken = true
		case unicode.IsSpace(r) && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()
	return tokens, nil
}

func dispatch(p *platform.TradingPlatform, tokens []string) {
	switch tokens[0] {
	case "help":
		printHelp()
	case "deposit":
		handleDeposit(p, tokens)
	case "withdraw":
		handleWithdraw(p, tokens)
	case "send":
		handleSend(p, tokens)
	case "order":
		handleOrder(p, tokens)
	case "book":
		handleBook(p, tokens)
	case "ledger":
		handleLedger(p)
	case "accounts":
		handleAccounts(p)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s (try 'help')\n", tokens[0])
	}
}

func printHelp() {
	fmt.Println(`commands:
  deposit <signer> <amount>
  withdraw <signer> <amount>
  send <signer> to <recipient> <amount>
  order <signer> <buy|sell|bid|ask> <price> <amount>
  book [sort] [desc]
  ledger
  accounts
  help
  quit`)
}

func parseAmount(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

func handleDeposit(p *platform.TradingPlatform, tokens []string) {
	if len(tokens) != 3 {
		fmt.Fprintln(os.Stderr, "usage: deposit <signer> <amount>")
		return
	}
	amount, err := parseAmount(tokens[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid amount: %v\n", err)
		return
	}
	tx, err := p.Deposit(tokens[1], amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Printf("ok: %s %s %d\n", tx.Kind, tx.Account, tx.Amount)
}

func handleWithdraw(p *platform.TradingPlatform, tokens []string) {
	if len(tokens) != 3 {
		fmt.Fprintln(os.Stderr, "usage: withdraw <signer> <amount>")
		return
	}
	amount, err := parseAmount(tokens[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid amount: %v\n", err)
		return
	}
	tx, err := p.Withdraw(tokens[1], amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Printf("ok: %s %s %d\n", tx.Kind, tx.Account, tx.Amount)
}

func handleSend(p *platform.TradingPlatform, tokens []string) {
	if len(tokens) != 5 || tokens[2] != "to" {
		fmt.Fprintln(os.Stderr, "usage: send <signer> to <recipient> <amount>")
		return
	}
	amount, err := parseAmount(tokens[4])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid amount: %v\n", err)
		return
	}
	withdrawTx, depositTx, err := p.Send(tokens[1], tokens[3], amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Printf("ok: %s %s %d -> %s %s %d\n",
		withdrawTx.Kind, withdrawTx.Account, withdrawTx.Amount,
		depositTx.Kind, depositTx.Account, depositTx.Amount)
}

func handleOrder(p *platform.TradingPlatform, tokens []string) {
	if len(tokens) != 5 {
		fmt.Fprintln(os.Stderr, "usage: order <signer> <buy|sell|bid|ask> <price> <amount>")
		return
	}
	side, ok := parseSide(tokens[2])
	if !ok {
		fmt.Fprintln(os.Stderr, "error: side must be buy/sell (or bid/ask)")
		return
	}
	price, err := parseAmount(tokens[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid price: %v\n", err)
		return
	}
	amount, err := parseAmount(tokens[4])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid amount: %v\n", err)
		return
	}

	receipt, err := p.ProcessOrder(orders.NewOrder(price, amount, side, tokens[1]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Printf("ordinal=%d matches=%d\n", receipt.Ordinal, len(receipt.Matches))
	for _, m := range receipt.Matches {
		fmt.Printf("  fill signer=%s price=%d current=%d remaining=%d\n", m.Signer, m.Price, m.CurrentAmount, m.RemainingAmount)
	}
}

func parseSide(raw string) (orders.Side, bool) {
	switch strings.ToLower(raw) {
	case "buy", "bid":
		return orders.Buy, true
	case "sell", "ask":
		return orders.Sell, true
	default:
		return 0, false
	}
}

func handleBook(p *platform.TradingPlatform, tokens []string) {
	sort_, desc := false, false
	for _, flag := range tokens[1:] {
		switch flag {
		case "sort":
			sort_ = true
		case "desc":
			desc = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", flag)
			return
		}
	}
	for _, entry := range p.OrderBook(sort_, desc) {
		fmt.Printf("ordinal=%d side=%s signer=%s price=%d current=%d remaining=%d\n",
			entry.Ordinal, entry.Side, entry.Signer, entry.Price, entry.CurrentAmount, entry.RemainingAmount)
	}
}

func handleLedger(p *platform.TradingPlatform) {
	for _, tx := range p.TransactionLog() {
		fmt.Printf("%s %s %d\n", tx.Kind, tx.Account, tx.Amount)
	}
}

func handleAccounts(p *platform.TradingPlatform) {
	for signer, balance := range p.Accounts() {
		fmt.Printf("%s %d\n", signer, balance)
	}
}
