package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestAccount(balance string) *Account {
	return NewAccount("u1", d(balance))
}

func TestApply_BuyCreatesPosition(t *testing.T) {
	acct := newTestAccount("10000")

	next, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 10, Side: SideBuy}, d("150"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !next.Balance.Equal(d("8500")) {
		t.Fatalf("balance = %s, want 8500", next.Balance)
	}
	p, ok := next.Position("AAPL")
	if !ok {
		t.Fatalf("expected AAPL position")
	}
	if p.Quantity != 10 || !p.AvgPrice.Equal(d("150")) {
		t.Fatalf("position = %+v", p)
	}
	// purity: input untouched
	if !acct.Balance.Equal(d("10000")) || len(acct.Positions) != 0 {
		t.Fatalf("input account mutated: %+v", acct)
	}
}

func TestApply_BuyWeightedAverage(t *testing.T) {
	acct := newTestAccount("100000")

	next, err := Apply(acct, TradeRequest{Symbol: "TSLA", Quantity: 10, Side: SideBuy}, d("100"))
	if err != nil {
		t.Fatalf("buy 1: %v", err)
	}
	next, err = Apply(next, TradeRequest{Symbol: "TSLA", Quantity: 30, Side: SideBuy}, d("200"))
	if err != nil {
		t.Fatalf("buy 2: %v", err)
	}
	p, _ := next.Position("TSLA")
	// (10*100 + 30*200) / 40 = 175
	if !p.AvgPrice.Equal(d("175")) {
		t.Fatalf("avg = %s, want 175", p.AvgPrice)
	}
	if p.Quantity != 40 {
		t.Fatalf("qty = %d, want 40", p.Quantity)
	}
	if !next.Balance.Equal(d("93000")) {
		t.Fatalf("balance = %s, want 93000", next.Balance)
	}
}

func TestApply_BuyInsufficientBalance(t *testing.T) {
	acct := newTestAccount("100")

	next, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 1, Side: SideBuy}, d("150"))
	if err != ErrInsufficientBalance {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if next != nil {
		t.Fatalf("expected nil account on rejection")
	}
	if !acct.Balance.Equal(d("100")) {
		t.Fatalf("balance changed on rejection: %s", acct.Balance)
	}
}

func TestApply_BuyExactBalance(t *testing.T) {
	acct := newTestAccount("1500")

	next, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 10, Side: SideBuy}, d("150"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !next.Balance.IsZero() {
		t.Fatalf("balance = %s, want 0", next.Balance)
	}
}

func TestApply_InvalidQuantity(t *testing.T) {
	acct := newTestAccount("10000")
	for _, qty := range []int64{0, -5} {
		if _, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: qty, Side: SideBuy}, d("150")); err != ErrInvalidQuantity {
			t.Fatalf("qty=%d err = %v, want ErrInvalidQuantity", qty, err)
		}
		if _, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: qty, Side: SideSell}, d("150")); err != ErrInvalidQuantity {
			t.Fatalf("qty=%d err = %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestApply_NonPositivePrice(t *testing.T) {
	acct := newTestAccount("10000")
	if _, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 1, Side: SideBuy}, d("0")); err != ErrPriceUnavailable {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}
	if _, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 1, Side: SideBuy}, d("-3")); err != ErrPriceUnavailable {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestApply_SellNoPosition(t *testing.T) {
	acct := newTestAccount("10000")
	if _, err := Apply(acct, TradeRequest{Symbol: "MSFT", Quantity: 1, Side: SideSell}, d("300")); err != ErrNoPosition {
		t.Fatalf("err = %v, want ErrNoPosition", err)
	}
}

func TestApply_SellInsufficientShares(t *testing.T) {
	acct := newTestAccount("10000")
	next, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 5, Side: SideBuy}, d("150"))
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := Apply(next, TradeRequest{Symbol: "AAPL", Quantity: 6, Side: SideSell}, d("150")); err != ErrInsufficientShares {
		t.Fatalf("err = %v, want ErrInsufficientShares", err)
	}
	// rejection leaves the holding intact
	p, _ := next.Position("AAPL")
	if p.Quantity != 5 {
		t.Fatalf("qty = %d after rejected sell", p.Quantity)
	}
}

func TestApply_SellPartialKeepsAvgPrice(t *testing.T) {
	acct := newTestAccount("10000")
	next, _ := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 10, Side: SideBuy}, d("150"))

	next, err := Apply(next, TradeRequest{Symbol: "AAPL", Quantity: 4, Side: SideSell}, d("200"))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	p, _ := next.Position("AAPL")
	if p.Quantity != 6 {
		t.Fatalf("qty = %d, want 6", p.Quantity)
	}
	if !p.AvgPrice.Equal(d("150")) {
		t.Fatalf("avg changed by sell: %s", p.AvgPrice)
	}
	// 10000 - 1500 + 800
	if !next.Balance.Equal(d("9300")) {
		t.Fatalf("balance = %s, want 9300", next.Balance)
	}
}

func TestApply_SellAllRemovesPosition_FreshAverageOnRebuy(t *testing.T) {
	acct := newTestAccount("10000")
	next, _ := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 10, Side: SideBuy}, d("100"))
	next, err := Apply(next, TradeRequest{Symbol: "AAPL", Quantity: 10, Side: SideSell}, d("120"))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if _, ok := next.Position("AAPL"); ok {
		t.Fatalf("zero-quantity position retained")
	}

	// a rebuy must not see the old average
	next, err = Apply(next, TradeRequest{Symbol: "AAPL", Quantity: 3, Side: SideBuy}, d("90"))
	if err != nil {
		t.Fatalf("rebuy: %v", err)
	}
	p, _ := next.Position("AAPL")
	if !p.AvgPrice.Equal(d("90")) {
		t.Fatalf("avg = %s, want fresh 90", p.AvgPrice)
	}
}

// The walkthrough from the product scenario: balance=10000, buy 10@150, buy
// 10@150, over-sell rejected, sell 20@150 closes out at 11500.
func TestApply_Scenario(t *testing.T) {
	acct := newTestAccount("10000")

	acct, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 10, Side: SideBuy}, d("150"))
	if err != nil {
		t.Fatalf("buy 1: %v", err)
	}
	if !acct.Balance.Equal(d("8500")) {
		t.Fatalf("balance = %s, want 8500", acct.Balance)
	}

	acct, err = Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 10, Side: SideBuy}, d("150"))
	if err != nil {
		t.Fatalf("buy 2: %v", err)
	}
	p, _ := acct.Position("AAPL")
	if p.Quantity != 20 || !p.AvgPrice.Equal(d("150")) {
		t.Fatalf("position = %+v, want 20@150", p)
	}

	if _, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 30, Side: SideSell}, d("150")); err != ErrInsufficientShares {
		t.Fatalf("over-sell err = %v, want ErrInsufficientShares", err)
	}
	if !acct.Balance.Equal(d("7000")) {
		t.Fatalf("balance changed by rejected sell: %s", acct.Balance)
	}

	acct, err = Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 20, Side: SideSell}, d("150"))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !acct.Balance.Equal(d("11500")) {
		t.Fatalf("balance = %s, want 11500", acct.Balance)
	}
	if len(acct.Positions) != 0 {
		t.Fatalf("positions not empty: %+v", acct.Positions)
	}
}

func TestReplay_ReproducesState(t *testing.T) {
	start := d("10000")
	txs := []Transaction{
		{Symbol: "AAPL", Quantity: 10, Price: d("150"), Side: SideBuy},
		{Symbol: "TSLA", Quantity: 2, Price: d("800"), Side: SideBuy},
		{Symbol: "AAPL", Quantity: 10, Price: d("155"), Side: SideBuy},
		{Symbol: "AAPL", Quantity: 15, Price: d("160"), Side: SideSell},
		{Symbol: "TSLA", Quantity: 2, Price: d("790"), Side: SideSell},
	}

	// live path
	live := NewAccount("u1", start)
	for _, tx := range txs {
		next, err := Apply(live, TradeRequest{Symbol: tx.Symbol, Quantity: tx.Quantity, Side: tx.Side}, tx.Price)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		live = next
	}

	replayed, err := Replay("u1", start, txs)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replayed.Balance.Equal(live.Balance) {
		t.Fatalf("replay balance = %s, live = %s", replayed.Balance, live.Balance)
	}
	if len(replayed.Positions) != len(live.Positions) {
		t.Fatalf("replay positions = %d, live = %d", len(replayed.Positions), len(live.Positions))
	}
	for sym, lp := range live.Positions {
		rp, ok := replayed.Position(sym)
		if !ok || rp.Quantity != lp.Quantity || !rp.AvgPrice.Equal(lp.AvgPrice) {
			t.Fatalf("replay %s = %+v, live = %+v", sym, rp, lp)
		}
	}
}

func TestTradeRequest_Validate(t *testing.T) {
	cases := []struct {
		req  TradeRequest
		want error
	}{
		{TradeRequest{Symbol: "AAPL", Quantity: 1, Side: SideBuy}, nil},
		{TradeRequest{Symbol: "BRK.B", Quantity: 1, Side: SideSell}, nil},
		{TradeRequest{Symbol: "aapl", Quantity: 1, Side: SideBuy}, ErrInvalidSymbol},
		{TradeRequest{Symbol: "", Quantity: 1, Side: SideBuy}, ErrInvalidSymbol},
		{TradeRequest{Symbol: "TOOLONGSYMBOL", Quantity: 1, Side: SideBuy}, ErrInvalidSymbol},
		{TradeRequest{Symbol: "AAPL", Quantity: 0, Side: SideBuy}, ErrInvalidQuantity},
		{TradeRequest{Symbol: "AAPL", Quantity: -1, Side: SideSell}, ErrInvalidQuantity},
		{TradeRequest{Symbol: "AAPL", Quantity: 1, Side: Side("hold")}, ErrInvalidSide},
		{TradeRequest{Symbol: "AAPL", Quantity: 1, Side: Side("")}, ErrInvalidSide},
	}
	for _, tc := range cases {
		if err := tc.req.Validate(); err != tc.want {
			t.Fatalf("%+v: err = %v, want %v", tc.req, err, tc.want)
		}
	}
}

func TestApply_UnknownSide(t *testing.T) {
	acct := newTestAccount("10000")
	_, err := Apply(acct, TradeRequest{Symbol: "AAPL", Quantity: 1, Side: Side("hold")}, d("150"))
	if err != ErrInvalidSide {
		t.Fatalf("err = %v, want ErrInvalidSide", err)
	}
	if Reason(err) != "invalid_side" {
		t.Fatalf("reason = %q, want invalid_side", Reason(err))
	}
	if !IsRejection(err) {
		t.Fatalf("unknown side must be a rejection, not an infrastructure failure")
	}
}

func TestPosition_PnL(t *testing.T) {
	p := Position{Symbol: "AAPL", Quantity: 10, AvgPrice: d("150")}
	if got := p.UnrealizedPnL(d("170")); !got.Equal(d("200")) {
		t.Fatalf("unrealized = %s, want 200", got)
	}
	if got := p.RealizedPnL(d("140"), 4); !got.Equal(d("-40")) {
		t.Fatalf("realized = %s, want -40", got)
	}
	if got := p.MarketValue(d("170")); !got.Equal(d("1700")) {
		t.Fatalf("market value = %s, want 1700", got)
	}
}
