package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boda-dev/boda/internal/categorize"
	"github.com/boda-dev/boda/internal/message"
	"github.com/boda-dev/boda/internal/model"
)

func received(code, amt, party, balance string) string {
	return fmt.Sprintf("%s Confirmed.You have received Ksh%s from %s on 15/10/26 at 3:45 PM New M-PESA balance is Ksh%s.", code, amt, party, balance)
}

func sent(code, amt, party, balance string) string {
	return fmt.Sprintf("%s Confirmed. Ksh%s sent to %s on 15/10/26 at 4:00 PM. New M-PESA balance is Ksh%s.", code, amt, party, balance)
}

func paid(code, amt, party, balance string) string {
	return fmt.Sprintf("%s Confirmed. Ksh%s paid to %s. on 15/10/26 at 5:00 PM.New M-PESA balance is Ksh%s.", code, amt, party, balance)
}

type recordingDecider struct {
	questions []Question
	answers   []Decision
	err       error
}

func (r *recordingDecider) Decide(_ context.Context, q Question) (Decision, error) {
	r.questions = append(r.questions, q)
	if r.err != nil {
		return Decision{}, r.err
	}
	d := r.answers[0]
	r.answers = r.answers[1:]
	return d, nil
}

func newProcessor(t *testing.T, d Decider, opts ...Option) *Processor {
	t.Helper()
	rules, err := categorize.LoadEmbedded()
	require.NoError(t, err)
	opts = append([]Option{WithClock(func() time.Time { return today })}, opts...)
	return NewProcessor(message.NewParser(), rules, d, opts...)
}

func TestRun_MixedBatch(t *testing.T) {
	doc := priorLedger(t)
	decider := &recordingDecider{answers: []Decision{AsSavings("EmergencySavings")}}
	p := newProcessor(t, decider)

	lines := []string{
		received("QA00000001", "500.00", "JOHN DOE 0712345678", "1,500.00"),
		paid("QA00000002", "200.00", "SHELL KAREN", "1,300.00"),
		"not an mpesa message",
		sent("QA00000003", "100.00", "JANE WANJIKU 0722000111", "900.00"),
		sent("QA00000004", "100.00", "JANE WANJIKU 0722000111", "1,200.00"),
		received("QA00000001", "500.00", "JOHN DOE 0712345678", "1,700.00"),
	}
	res, err := p.Run(context.Background(), doc, lines)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 6)
	assert.NotEmpty(t, res.BatchID)

	want := []Status{StatusApplied, StatusApplied, StatusUnparseable, StatusRejected, StatusApplied, StatusDuplicate}
	for i, o := range res.Outcomes {
		assert.Equal(t, want[i], o.Status, "line %d", o.Line)
		assert.Equal(t, i+1, o.Line)
	}

	assert.Equal(t, model.KindIncome, res.Outcomes[0].Entry.Kind)
	assert.Equal(t, "Offline", res.Outcomes[0].Entry.Category)
	assert.Equal(t, "Fuel", res.Outcomes[1].Entry.Category)
	assert.ErrorIs(t, res.Outcomes[2].Err, message.ErrUnparseable)
	var mm *MismatchError
	require.True(t, errors.As(res.Outcomes[3].Err, &mm))
	assert.Equal(t, "1200.00", mm.Expected.StringFixed(2))
	assert.Equal(t, model.KindSavings, res.Outcomes[4].Entry.Kind)

	assert.Len(t, decider.questions, 1)
	assert.Equal(t, "QA00000004", decider.questions[0].Transaction.TransactionCode)

	assert.Equal(t, 3, res.Count(StatusApplied))
	assert.Len(t, doc.Entries(model.KindIncome), 3)
	assert.Len(t, doc.Entries(model.KindExpense), 2)
	assert.Len(t, doc.Entries(model.KindSavings), 1)
	assert.Equal(t, "1200.00", ChannelBalance(doc).StringFixed(2))

	require.Len(t, res.Contacts, 3)
	assert.Equal(t, model.Contact{Name: "JOHN DOE", Phone: "+254712345678", Date: "2026-10-15", Time: "15:45"}, res.Contacts[0])
	assert.Equal(t, "+254722000111", res.Contacts[1].Phone)
	assert.Empty(t, res.Contacts[1].Category)
	assert.Equal(t, "EmergencySavings", res.Contacts[2].Category)
}

func TestRun_EntryFromMessage(t *testing.T) {
	doc := priorLedger(t)
	p := newProcessor(t, &recordingDecider{})

	res, err := p.Run(context.Background(), doc, []string{received("QA00000001", "500.00", "BOLT KENYA", "1,500.00")})
	require.NoError(t, err)

	e := res.Outcomes[0].Entry
	assert.Equal(t, model.KindIncome, e.Kind)
	assert.Equal(t, "Bolt", e.Category)
	assert.Equal(t, model.ModeMPesa, e.Mode)
	assert.Equal(t, "QA00000001", e.TransactionCode)
	assert.Equal(t, "BOLT KENYA", e.Notes)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), e.Date)
	assert.Empty(t, res.Contacts)
}

func TestRun_SkippedIsNotApplied(t *testing.T) {
	doc := priorLedger(t)
	p := newProcessor(t, &recordingDecider{answers: []Decision{Skip()}})

	res, err := p.Run(context.Background(), doc, []string{
		sent("QA00000001", "100.00", "JANE WANJIKU 0722000111", "900.00"),
		received("QA00000002", "50.00", "JOHN DOE 0712345678", "1,050.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, res.Outcomes[0].Status)
	assert.Nil(t, res.Outcomes[0].Err)
	assert.Equal(t, StatusApplied, res.Outcomes[1].Status)
	assert.Equal(t, 1, res.Count(StatusSkipped))
}

func TestRun_InvalidDecisionIsIsolated(t *testing.T) {
	doc := priorLedger(t)
	p := newProcessor(t, &recordingDecider{answers: []Decision{AsExpense("Holidays")}})

	res, err := p.Run(context.Background(), doc, []string{
		sent("QA00000001", "100.00", "JANE WANJIKU 0722000111", "900.00"),
		paid("QA00000002", "100.00", "RUBIS THIKA RD", "900.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Outcomes[0].Status)
	assert.Equal(t, StatusApplied, res.Outcomes[1].Status)
}

func TestRun_Suggestions(t *testing.T) {
	doc := priorLedger(t)
	decider := &recordingDecider{answers: []Decision{AsExpense("Debts"), AsExpense("Debts"), Skip()}}
	p := newProcessor(t, decider, WithSuggestions(func(phone string) string {
		if phone == "+254722000111" {
			return "Rent"
		}
		return ""
	}))

	_, err := p.Run(context.Background(), doc, []string{
		sent("QA00000001", "100.00", "JANE WANJIKU 0722000111", "900.00"),
		sent("QA00000002", "100.00", "PETER OTIENO 0733000222", "800.00"),
		sent("QA00000003", "100.00", "PETER OTIENO 0733000222", "700.00"),
	})
	require.NoError(t, err)

	require.Len(t, decider.questions, 3)
	assert.Equal(t, "Rent", decider.questions[0].Suggested)
	assert.Empty(t, decider.questions[1].Suggested)
	assert.Equal(t, "Debts", decider.questions[2].Suggested, "earlier answer in the same batch")
	assert.Equal(t, []string{"EmergencySavings"}, decider.questions[0].SavingsCategories)
}

func TestRun_DeciderErrorStopsBatch(t *testing.T) {
	doc := priorLedger(t)
	p := newProcessor(t, &recordingDecider{err: ErrNoInput})

	res, err := p.Run(context.Background(), doc, []string{
		paid("QA00000001", "100.00", "SHELL KAREN", "900.00"),
		sent("QA00000002", "100.00", "JANE WANJIKU 0722000111", "800.00"),
		paid("QA00000003", "100.00", "SHELL KAREN", "700.00"),
	})
	require.ErrorIs(t, err, ErrNoInput)
	assert.Contains(t, err.Error(), "line 2")
	require.Len(t, res.Outcomes, 1)
	assert.Len(t, doc.Entries(model.KindExpense), 2, "first line stays applied")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newProcessor(t, &recordingDecider{}).Run(ctx, priorLedger(t), []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Outcomes)
}

func TestRun_CustomTolerance(t *testing.T) {
	p := newProcessor(t, &recordingDecider{}, WithTolerance(dec("20")))
	res, err := p.Run(context.Background(), priorLedger(t), []string{received("QA00000001", "500.00", "UBER BV", "1,480.00")})
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, res.Outcomes[0].Status)
	assert.Equal(t, "Uber", res.Outcomes[0].Entry.Category)
}
