package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/backend"
	"financas/internal/commands"
	"financas/internal/core"
	"financas/internal/docstore/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	for _, f := range []core.Fields{
		{"description": "Salary", "amount": 1000.0, "date": "2024-03-05"},
		{"description": "Bonus", "amount": 200.0, "date": "2024-04-01"},
	} {
		_, err := s.Set(ctx, core.Incomes.String(), "", f)
		require.NoError(t, err)
	}
	_, err := s.Set(ctx, core.Expenses.String(), "", core.Fields{"description": "Rent", "amount": 400.0, "date": "2024-03-10"})
	require.NoError(t, err)
	return s
}

func runReport(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	closed := false
	open := func(context.Context) (*backend.BackendResult, error) {
		return &backend.BackendResult{Store: store, Cleanup: func() error { closed = true; return nil }}, nil
	}
	cmd := commands.NewRootCommand(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "store should be closed after the command")
	}
	return out.String(), err
}

func TestTotal(t *testing.T) {
	out, err := runReport(t, seededStore(t), "total")
	require.NoError(t, err)

	var totals core.Totals
	require.NoError(t, json.Unmarshal([]byte(out), &totals))
	assert.Equal(t, 1200.0, totals.TotalIncome)
	assert.Equal(t, 400.0, totals.TotalExpense)
}

func TestTotal_EmptyStore(t *testing.T) {
	out, err := runReport(t, memory.New(), "total", "--indent")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"totalIncome\": 0")
}

func TestMonthly(t *testing.T) {
	out, err := runReport(t, seededStore(t), "monthly", "--year", "2024", "--month", "03")
	require.NoError(t, err)

	var report core.MonthlyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Incomes, 1)
	assert.Len(t, report.Expenses, 1)
	assert.Equal(t, 1000.0, report.TotalIncome)
	assert.Equal(t, 400.0, report.TotalExpenses)
}

func TestMonthly_RequiresFlags(t *testing.T) {
	_, err := runReport(t, seededStore(t), "monthly", "--year", "2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month")
}

func TestOpenFailure(t *testing.T) {
	cmd := commands.NewRootCommand(func(context.Context) (*backend.BackendResult, error) {
		return nil, errors.New("no database")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"total"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")
}

func TestEnvStoreOpener_KeepsLogsOffStdout(t *testing.T) {
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "report.db"))
	t.Setenv("LOG_LEVEL", "info")

	var stdout, stderr bytes.Buffer
	cmd := commands.NewRootCommand(commands.EnvStoreOpener(&stderr))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"total"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	dec := json.NewDecoder(&stdout)
	var totals core.Totals
	require.NoError(t, dec.Decode(&totals), "stdout must hold only the report JSON")
	assert.False(t, dec.More(), "unexpected data after the report JSON")
	assert.Equal(t, core.Totals{}, totals)
	assert.Contains(t, stderr.String(), "Initialized SQLite backend")
}
