package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "nested", "book.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBookStoreRoundTrip(t *testing.T) {
	table, err := rules.Default()
	require.NoError(t, err)

	book := payroll.NewBook(table)
	alice := payroll.NewEmployee("alice", 26)
	alice.FederalCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
	alice.ProvincialCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
	require.NoError(t, alice.StartROEWorkPeriod(payroll.Date(2011, time.January, 3)))
	require.NoError(t, book.AddEmployee(alice))

	posted, err := book.NewPayday(payroll.Date(2011, time.July, 15), 0)
	require.NoError(t, err)
	stub := posted.NewPaystub(alice)
	stub.AddLine(payroll.Income(money.MustParse("480"), "Salary"))
	stub.AddLine(payroll.CPPDeductionLine())
	stub.AddLine(payroll.EIDeductionLine())
	stub.AddLine(payroll.IncomeTaxLine())
	stub.TransactionID = "txn-1"
	_, err = posted.Post()
	require.NoError(t, err)

	draft, err := book.NewPayday(payroll.Date(2011, time.July, 29), 0)
	require.NoError(t, err)
	draftStub := draft.NewPaystub(alice)
	draftStub.AddLine(payroll.Income(money.MustParse("480"), "Salary"))
	draftStub.AddLine(payroll.CPPDeductionLine())

	store := NewBookStore(openTestDB(t))
	require.NoError(t, store.Save(book))

	loaded, err := store.Load(table)
	require.NoError(t, err)

	e, err := loaded.Employee("alice")
	require.NoError(t, err)
	assert.True(t, e.YTDValue(2011, payroll.YTDCPP).Equal(money.MustParse("17.10")))
	current, ok := e.CurrentROEWorkPeriod()
	require.True(t, ok)
	assert.True(t, current.Start.Equal(payroll.Date(2011, time.January, 3)))

	stubs := e.Paystubs()
	require.Len(t, stubs, 2)
	assert.Equal(t, "txn-1", stubs[0].TransactionID)
	assert.True(t, stubs[0].Posted())
	assert.False(t, stubs[1].Posted())
	assert.Equal(t, "2011-07", stubs[1].Period().ID)

	tax, err := stubs[0].Total(payroll.LineDeduction, payroll.CalcIncomeTax)
	require.NoError(t, err)
	assert.True(t, tax.Equal(money.MustParse("14.48")), "tax = %s", tax)

	// The draft stub still computes against the loaded accumulators.
	cpp, err := stubs[1].Total(payroll.LineDeduction, payroll.CalcCPP)
	require.NoError(t, err)
	assert.True(t, cpp.Equal(money.MustParse("17.10")), "cpp = %s", cpp)

	// Saving again replaces rather than duplicates.
	require.NoError(t, store.Save(loaded))
	again, err := store.Load(table)
	require.NoError(t, err)
	assert.Len(t, again.Paydays(), 2)
}

func TestTransactionLog(t *testing.T) {
	conn := openTestDB(t)
	log := NewTransactionLog(conn)

	require.NoError(t, log.Record(TransactionRecord{
		Backend: "file", TransactionID: "a", PayDate: "2016-01-15", Serial: 0, Employee: "alice", NetPay: "442.80",
	}))
	require.NoError(t, log.Record(TransactionRecord{
		Backend: "file", TransactionID: "b", PayDate: "2016-01-15", Serial: 0, Employee: "bob", NetPay: "100.00",
	}))
	require.NoError(t, log.Record(TransactionRecord{
		Backend: "file", TransactionID: "a", PayDate: "2016-01-15", Serial: 0, Employee: "alice", NetPay: "442.81",
	}))

	records, err := log.ForPayday("2016-01-15", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].Employee)
	assert.Equal(t, "442.81", records[0].NetPay)

	stats, err := log.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Transactions)
	assert.True(t, stats.LastRecorded.Valid)

	deleted, err := log.Delete("file", "a")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = log.Delete("file", "a")
	require.NoError(t, err)
	assert.False(t, deleted)

	value, err := log.GetMetadata("last_run")
	require.NoError(t, err)
	assert.Empty(t, value)
	require.NoError(t, log.SetMetadata("last_run", "2016-01-15#0"))
	value, err = log.GetMetadata("last_run")
	require.NoError(t, err)
	assert.Equal(t, "2016-01-15#0", value)
}

func TestOpenStampsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.db")
	conn, err := Open(path)
	require.NoError(t, err)

	version, err := conn.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
	assert.Equal(t, path, conn.Path())
	require.NoError(t, conn.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Close())
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.db")
	conn, err := Open(path)
	require.NoError(t, err)
	_, err = conn.Exec(`PRAGMA user_version = 99`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}
