package paramcache

import "testing"

func TestDeliveryList_FirstLastInserted(t *testing.T) {
	t.Parallel()

	a, b := pid("A"), pid("B")
	v1 := NewParameterValue(a, "a1", 1, 1, Acquired, 0)
	v2 := NewParameterValue(b, "b1", 1, 1, Acquired, 0)
	v3 := NewParameterValue(a, "a2", 1, 1, Acquired, 0)

	dl := NewDeliveryList([]*ParameterValue{v1, v2, v3})

	if dl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", dl.Len())
	}
	if got := dl.FirstInserted(a); got != v1 {
		t.Fatalf("FirstInserted(A) = %v, want v1", got)
	}
	if got := dl.LastInserted(a); got != v3 {
		t.Fatalf("LastInserted(A) = %v, want v3", got)
	}
	if got := dl.FirstInserted(b); got != v2 {
		t.Fatalf("FirstInserted(B) = %v, want v2", got)
	}
	if got := dl.LastInserted(b); got != v2 {
		t.Fatalf("LastInserted(B) = %v, want v2", got)
	}

	c := pid("C")
	if dl.Has(c) {
		t.Fatal("Has(C) = true, want false: C never appeared")
	}
	if got := dl.FirstInserted(c); got != nil {
		t.Fatalf("FirstInserted(C) = %v, want nil", got)
	}
}

func TestDeliveryList_ForEachOrder(t *testing.T) {
	t.Parallel()

	a := pid("A")
	v1 := NewParameterValue(a, 1, 1, 1, Acquired, 0)
	v2 := NewParameterValue(a, 2, 1, 1, Acquired, 0)
	v3 := NewParameterValue(a, 3, 1, 1, Acquired, 0)
	dl := NewDeliveryList([]*ParameterValue{v1, v2, v3})

	var got []any
	dl.ForEach(a, func(v *ParameterValue) { got = append(got, v.Value) })

	want := []any{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("ForEach visited %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ForEach[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDeliveryList_Empty(t *testing.T) {
	t.Parallel()

	dl := NewDeliveryList(nil)
	if dl.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", dl.Len())
	}
	if dl.Has(pid("A")) {
		t.Fatal("Has on empty delivery = true, want false")
	}

	visited := false
	dl.ForEach(pid("A"), func(*ParameterValue) { visited = true })
	if visited {
		t.Fatal("ForEach visited something in an empty delivery")
	}
}

// Two independently constructed DeliveryLists, even for the same
// parameter, are distinct pointers. GetValues-style grouping treats
// "co-delivered" as "same *DeliveryList pointer", so it relies on this.
func TestDeliveryList_DistinctPointersAreNotGrouped(t *testing.T) {
	t.Parallel()

	a := pid("A")
	dl1 := NewDeliveryList([]*ParameterValue{NewParameterValue(a, 1, 1, 1, Acquired, 0)})
	dl2 := NewDeliveryList([]*ParameterValue{NewParameterValue(a, 2, 2, 2, Acquired, 0)})

	if dl1 == dl2 {
		t.Fatal("two independently constructed DeliveryLists compared equal")
	}
}
