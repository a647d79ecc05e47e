package portfolio

import "testing"

func TestAccumulatorNetsPositions(t *testing.T) {
	acc := NewAccumulator()
	acc.Add("AAA", Security{Name: "Alpha"}, Opening, 10, 100)
	acc.Add("BBB", Security{Name: "Beta"}, Opening, 5, 50)
	acc.Add("AAA", Security{Name: "ignored"}, Closing, 4, 40)

	open := acc.Open()
	if len(open) != 2 {
		t.Fatalf("open positions = %d, want 2", len(open))
	}
	if open[0].Key != "AAA" || open[1].Key != "BBB" {
		t.Errorf("order = [%s %s], want first-seen order [AAA BBB]", open[0].Key, open[1].Key)
	}
	if open[0].Shares != 6 || open[0].Cost != 60 {
		t.Errorf("AAA = %v shares / %v cost, want 6 / 60", open[0].Shares, open[0].Cost)
	}
	if open[0].Security.Name != "Alpha" {
		t.Errorf("security name = %q, want first-seen Alpha", open[0].Security.Name)
	}
}

func TestAccumulatorDropsClosedPositions(t *testing.T) {
	acc := NewAccumulator()
	acc.Add("X", Security{}, Opening, 3, 30)
	acc.Add("X", Security{}, Closing, 3, 45)
	acc.Add("Y", Security{}, Closing, 1, 10)

	if open := acc.Open(); len(open) != 0 {
		t.Errorf("open positions = %+v, want none", open)
	}
	if acc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", acc.Len())
	}
}
