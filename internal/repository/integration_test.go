package repository

// Integration tests against a real MySQL instance. They are skipped
// unless TEST_MYSQL_DSN is set, e.g.
//
//	TEST_MYSQL_DSN='user:pass@tcp(127.0.0.1:3306)/centsible_test?parseTime=true' go test ./internal/repository/
//
// The schema is created via the embedded migrations and tables are
// wiped between tests.

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/centsible/centsible-go/internal/model"
)

type RepositorySuite struct {
	suite.Suite
	db    *sql.DB
	users *UserRepository
	txs   *TransactionRepository
	ctx   context.Context
}

func TestRepositorySuite(t *testing.T) {
	if os.Getenv("TEST_MYSQL_DSN") == "" {
		t.Skip("TEST_MYSQL_DSN not set; skipping MySQL integration tests")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	db, err := NewDB(os.Getenv("TEST_MYSQL_DSN"), PoolConfig{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})
	s.Require().NoError(err)
	s.Require().NoError(db.Ping())
	s.Require().NoError(Migrate(db))

	s.db = db
	s.users = NewUserRepository(db)
	s.txs = NewTransactionRepository(db)
	s.ctx = context.Background()
}

func (s *RepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.db.Exec(`DELETE FROM transactions`)
	s.Require().NoError(err)
	_, err = s.db.Exec(`DELETE FROM users`)
	s.Require().NoError(err)
}

func (s *RepositorySuite) newUser(email string, role model.Role) *model.User {
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHQ$a2V5a2V5a2V5",
		Role:         role,
	}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *RepositorySuite) newTransaction(userID string, typ model.TransactionType, cents int64, description, category string, date model.Date) *model.Transaction {
	t := &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        typ,
		AmountCents: cents,
		Description: description,
		Category:    category,
		Date:        date,
	}
	s.Require().NoError(s.txs.Create(s.ctx, t))
	return t
}

func (s *RepositorySuite) TestCreateAndGetUser() {
	created := s.newUser("alice@example.com", model.RoleUser)
	s.False(created.CreatedAt.IsZero(), "Create should fill timestamps")

	byEmail, err := s.users.GetByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID)
	s.Equal(model.RoleUser, byEmail.Role)

	byID, err := s.users.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("alice@example.com", byID.Email)
}

func (s *RepositorySuite) TestDuplicateEmail() {
	s.newUser("alice@example.com", model.RoleUser)

	dup := &model.User{
		ID:           uuid.NewString(),
		Name:         "Other Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	err := s.users.Create(s.ctx, dup)
	s.ErrorIs(err, ErrDuplicateEmail)
}

func (s *RepositorySuite) TestUserNotFound() {
	_, err := s.users.GetByEmail(s.ctx, "ghost@example.com")
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.users.GetByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *RepositorySuite) TestListUsers() {
	s.newUser("alice@example.com", model.RoleAdmin)
	s.newUser("bob@example.com", model.RoleReadOnly)

	users, err := s.users.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)

	emails := []string{users[0].Email, users[1].Email}
	s.ElementsMatch([]string{"alice@example.com", "bob@example.com"}, emails)
}

func (s *RepositorySuite) TestTransactionLifecycle() {
	owner := s.newUser("alice@example.com", model.RoleUser)

	created := s.newTransaction(owner.ID, model.TypeExpense, 4250, "Coffee", "Food & Dining", model.NewDate(2024, time.March, 1))
	s.False(created.CreatedAt.IsZero())

	got, err := s.txs.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(owner.ID, got.UserID)
	s.Equal(model.TypeExpense, got.Type)
	s.Equal(int64(4250), got.AmountCents)
	s.Equal("Coffee", got.Description)
	s.Equal("Food & Dining", got.Category)
	s.Equal("2024-03-01", got.Date.String())

	got.Type = model.TypeIncome
	got.AmountCents = 9900
	got.Description = "Refund"
	s.Require().NoError(s.txs.Update(s.ctx, got))

	updated, err := s.txs.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(model.TypeIncome, updated.Type)
	s.Equal(int64(9900), updated.AmountCents)
	s.Equal("Refund", updated.Description)

	s.Require().NoError(s.txs.Delete(s.ctx, created.ID))

	_, err = s.txs.GetByID(s.ctx, created.ID)
	s.ErrorIs(err, ErrTransactionNotFound)
	s.ErrorIs(s.txs.Delete(s.ctx, created.ID), ErrTransactionNotFound)
}

func (s *RepositorySuite) TestListPaginationAndSearch() {
	owner := s.newUser("alice@example.com", model.RoleUser)
	other := s.newUser("bob@example.com", model.RoleUser)

	s.newTransaction(owner.ID, model.TypeExpense, 450, "Coffee beans", "Groceries", model.NewDate(2024, time.March, 5))
	s.newTransaction(owner.ID, model.TypeExpense, 1200, "Lunch", "Food & Dining", model.NewDate(2024, time.March, 4))
	s.newTransaction(owner.ID, model.TypeExpense, 900, "Coffee with Sam", "Food & Dining", model.NewDate(2024, time.March, 3))
	s.newTransaction(owner.ID, model.TypeIncome, 250000, "Salary", "Work", model.NewDate(2024, time.March, 1))
	s.newTransaction(other.ID, model.TypeExpense, 999, "Coffee", "Food & Dining", model.NewDate(2024, time.March, 5))

	all, err := s.txs.ListByUser(s.ctx, owner.ID, "", 20, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 4, "listing is owner-scoped")
	s.Equal("Coffee beans", all[0].Description, "newest date first")
	s.Equal("Salary", all[3].Description)

	page2, err := s.txs.ListByUser(s.ctx, owner.ID, "", 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page2, 2)
	s.Equal("Coffee with Sam", page2[0].Description)

	past, err := s.txs.ListByUser(s.ctx, owner.ID, "", 20, 100)
	s.Require().NoError(err)
	s.Empty(past, "pages past the end are empty, not an error")

	count, err := s.txs.CountByUser(s.ctx, owner.ID, "")
	s.Require().NoError(err)
	s.Equal(int64(4), count)

	coffee, err := s.txs.ListByUser(s.ctx, owner.ID, "COFFEE", 20, 0)
	s.Require().NoError(err)
	s.Len(coffee, 2, "search is case-insensitive and matches description")

	byCategory, err := s.txs.ListByUser(s.ctx, owner.ID, "food &", 20, 0)
	s.Require().NoError(err)
	s.Len(byCategory, 2, "search also matches category")

	coffeeCount, err := s.txs.CountByUser(s.ctx, owner.ID, "coffee")
	s.Require().NoError(err)
	s.Equal(int64(2), coffeeCount)

	literal, err := s.txs.ListByUser(s.ctx, owner.ID, "100%", 20, 0)
	s.Require().NoError(err)
	s.Empty(literal, "LIKE metacharacters in the search match literally")
}

func (s *RepositorySuite) TestAggregates() {
	owner := s.newUser("alice@example.com", model.RoleUser)

	s.newTransaction(owner.ID, model.TypeIncome, 500000, "Salary", "Work", model.NewDate(2024, time.January, 31))
	s.newTransaction(owner.ID, model.TypeIncome, 500000, "Salary", "Work", model.NewDate(2024, time.February, 29))
	s.newTransaction(owner.ID, model.TypeExpense, 120000, "Rent", "Housing", model.NewDate(2024, time.February, 1))
	s.newTransaction(owner.ID, model.TypeExpense, 4250, "Coffee", "Food & Dining", model.NewDate(2024, time.February, 10))
	s.newTransaction(owner.ID, model.TypeExpense, 30000, "Groceries", "Food & Dining", model.NewDate(2023, time.December, 20))

	totals, err := s.txs.Totals(s.ctx, owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(1000000), totals.IncomeCents)
	s.Equal(int64(154250), totals.ExpenseCents)
	s.Equal(int64(5), totals.Count)

	buckets, err := s.txs.MonthlyBuckets(s.ctx, owner.ID, model.NewDate(2024, time.January, 1))
	s.Require().NoError(err)
	s.Require().Len(buckets, 2, "months without transactions are omitted")
	s.Equal(model.MonthlyBucket{Year: 2024, Month: 1, IncomeCents: 500000, ExpenseCents: 0}, buckets[0])
	s.Equal(model.MonthlyBucket{Year: 2024, Month: 2, IncomeCents: 500000, ExpenseCents: 124250}, buckets[1])

	categories, err := s.txs.CategorySums(s.ctx, owner.ID, model.NewDate(2024, time.January, 1))
	s.Require().NoError(err)
	s.Require().Len(categories, 2, "expense categories only, within the window")
	s.Equal(model.CategorySum{Category: "Housing", AmountCents: 120000, Count: 1}, categories[0])
	s.Equal(model.CategorySum{Category: "Food & Dining", AmountCents: 4250, Count: 1}, categories[1])

	years, err := s.txs.YearlySums(s.ctx, owner.ID, model.NewDate(2023, time.January, 1))
	s.Require().NoError(err)
	s.Require().Len(years, 2)
	s.Equal(model.YearlySum{Year: 2023, IncomeCents: 0, ExpenseCents: 30000}, years[0])
	s.Equal(model.YearlySum{Year: 2024, IncomeCents: 1000000, ExpenseCents: 124250}, years[1])
}

func (s *RepositorySuite) TestDeletingUserCascadesToTransactions() {
	owner := s.newUser("alice@example.com", model.RoleUser)
	s.newTransaction(owner.ID, model.TypeExpense, 4250, "Coffee", "Food & Dining", model.NewDate(2024, time.March, 1))

	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, owner.ID)
	s.Require().NoError(err)

	count, err := s.txs.CountByUser(s.ctx, owner.ID, "")
	s.Require().NoError(err)
	s.Equal(int64(0), count)
}

func (s *RepositorySuite) TestTotalsEmptyUser() {
	owner := s.newUser("alice@example.com", model.RoleUser)

	totals, err := s.txs.Totals(s.ctx, owner.ID)
	s.Require().NoError(err)
	s.Equal(model.Totals{}, totals)

	buckets, err := s.txs.MonthlyBuckets(s.ctx, owner.ID, model.NewDate(2024, time.January, 1))
	s.Require().NoError(err)
	s.Empty(buckets)
}
