package model

import "testing"

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"new", OrderStatusNew, "NEW"},
		{"done", OrderStatusDone, "DONE"},
		{"canceled", OrderStatusCanceled, "CANCELED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if OrderStatusNew.Terminal() {
		t.Fatal("NEW must not be terminal")
	}
	if !OrderStatusDone.Terminal() || !OrderStatusCanceled.Terminal() {
		t.Fatal("DONE and CANCELED must be terminal")
	}
}

func TestFeeComputation(t *testing.T) {
	cases := []struct {
		amount int64
		rate   int64
		extra  int64
		net    int64
	}{
		{5000, 200, 1000, 6000},
		{999, 200, 0, 999},
		{1000, 200, 200, 1200},
		{2500, 150, 300, 2800},
		{0, 200, 0, 0},
	}

	for _, tc := range cases {
		if got := Extra(tc.amount, tc.rate); got != tc.extra {
			t.Fatalf("Extra(%d, %d) = %d, want %d", tc.amount, tc.rate, got, tc.extra)
		}
		if got := Net(tc.amount, tc.rate); got != tc.net {
			t.Fatalf("Net(%d, %d) = %d, want %d", tc.amount, tc.rate, got, tc.net)
		}
	}
}

func TestFeeComputationIsStable(t *testing.T) {
	// Summary and final report must always agree on the same amount.
	for _, amount := range []int64{1, 999, 1000, 1001, 5000, 123456} {
		first := Net(amount, 200)
		second := Net(amount, 200)
		if first != second {
			t.Fatalf("Net recomputation diverged for %d: %d vs %d", amount, first, second)
		}
	}
}

func TestHandleZero(t *testing.T) {
	if !(Handle{}).Zero() {
		t.Fatal("empty handle should be zero")
	}
	if (Handle{ChatID: 5, MessageID: 10}).Zero() {
		t.Fatal("populated handle should not be zero")
	}
}
