// Package seed fills a backend with sample accounts and transactions.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

const (
	DefaultUsers        = 5
	DefaultTransactions = 100
	DefaultPassword     = "password123!"
)

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing
elit sed do eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad
minim veniam quis nostrud exercitation ullamco laboris nisi aliquip ex ea commodo
consequat duis aute irure in reprehenderit voluptate velit esse cillum fugiat
nulla pariatur excepteur sint occaecat cupidatat non proident sunt culpa qui
officia deserunt mollit anim id est laborum`)

type Options struct {
	Users        int
	Transactions int
	Password     string
	EmailDomain  string
	// Progress is called once per stored transaction.
	Progress func()
}

type Result struct {
	Users        []string
	Transactions int
	Failed       int
}

// Generator produces random transactions with the type bias and amount
// ranges of the sample data set.
type Generator struct {
	rng        *rand.Rand
	categories []string
	now        time.Time
}

func NewGenerator(src rand.Source, categories []string, now time.Time) *Generator {
	if len(categories) == 0 {
		categories = []string{"Other"}
	}
	return &Generator{rng: rand.New(src), categories: categories, now: now}
}

// Transaction returns an unsaved transaction owned by one of userIDs.
// 80% are categorized expenses, 10% income, the rest savings or investments.
func (g *Generator) Transaction(userIDs []string) core.Transaction {
	tx := core.Transaction{
		UserID:      userIDs[g.rng.IntN(len(userIDs))],
		Description: g.sentence(),
		CreatedAt:   g.pastYear(),
	}
	tx.Date = core.DateOf(tx.CreatedAt)

	switch bias := g.rng.Float64(); {
	case bias < 0.80:
		tx.Type = core.Expense
		tx.Category = g.categories[g.rng.IntN(len(g.categories))]
		tx.Amount = g.amount(10, 1000)
	case bias < 0.90:
		tx.Type = core.Income
		tx.Amount = g.amount(2000, 9000)
	default:
		tx.Type = core.Saving
		if g.rng.IntN(2) == 1 {
			tx.Type = core.Investment
		}
		tx.Amount = g.amount(300, 5000)
	}
	return tx
}

func (g *Generator) amount(lo, hi int) decimal.Decimal {
	return decimal.NewFromInt(int64(lo + g.rng.IntN(hi-lo+1)))
}

func (g *Generator) pastYear() time.Time {
	span := g.now.Sub(g.now.AddDate(-1, 0, 0))
	return g.now.Add(-time.Duration(g.rng.Int64N(int64(span)))).UTC().Truncate(time.Second)
}

func (g *Generator) sentence() string {
	n := 4 + g.rng.IntN(6)
	words := make([]string, n)
	for i := range words {
		words[i] = loremWords[g.rng.IntN(len(loremWords))]
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ") + "."
}

// Run creates opts.Users accounts and opts.Transactions transactions spread
// across them. Accounts left over from a previous run are signed into and
// reused. Individual transaction failures are counted, not fatal.
func Run(ctx context.Context, identity ports.Identity, store ports.TransactionStore, gen *Generator, opts Options, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSeed)
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.EmailDomain == "" {
		opts.EmailDomain = "fintrack.test"
	}

	var res Result
	for i := 1; i <= opts.Users; i++ {
		email := fmt.Sprintf("seed%d@%s", i, opts.EmailDomain)
		id, err := ensureUser(ctx, identity, email, opts.Password)
		if err != nil {
			logger.Error("Seed user failed", "email", email, log.FieldError, err)
			continue
		}
		logger.Info("Seed user ready", "email", email, log.FieldUserID, id)
		res.Users = append(res.Users, id)
	}
	if len(res.Users) == 0 {
		return res, errors.New("no users available, cannot create transactions")
	}

	for i := 0; i < opts.Transactions; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		tx := gen.Transaction(res.Users)
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			res.Failed++
			logger.Warn("Seed transaction failed",
				log.FieldUserID, tx.UserID,
				log.FieldError, err)
		} else {
			res.Transactions++
		}
		if opts.Progress != nil {
			opts.Progress()
		}
	}
	return res, nil
}

func ensureUser(ctx context.Context, identity ports.Identity, email, password string) (string, error) {
	out, err := identity.SignUp(ctx, email, password, core.UserMetadata{FullName: core.EmailLocalPart(email)})
	if err == nil {
		return out.User.ID, nil
	}
	if !errors.Is(err, core.ErrUserExists) {
		return "", err
	}
	sess, err := identity.SignIn(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("existing user %s: %w", email, err)
	}
	return sess.UserID, nil
}
