package model

import "testing"

func TestTableStatusGuards(t *testing.T) {
	cases := []struct {
		status    string
		reserve   bool
		seat      bool
		checkIn   bool
		cleanDone bool
	}{
		{TableAvailable, true, true, false, false},
		{TableReserved, false, false, true, false},
		{TableOccupied, false, false, false, false},
		{TableNeedsCleaning, false, false, false, true},
	}

	for _, tt := range cases {
		if got := CanReserve(tt.status); got != tt.reserve {
			t.Errorf("CanReserve(%s)=%v, want %v", tt.status, got, tt.reserve)
		}
		if got := CanSeat(tt.status); got != tt.seat {
			t.Errorf("CanSeat(%s)=%v, want %v", tt.status, got, tt.seat)
		}
		if got := CanCheckIn(tt.status); got != tt.checkIn {
			t.Errorf("CanCheckIn(%s)=%v, want %v", tt.status, got, tt.checkIn)
		}
		if got := CanFinishCleaning(tt.status); got != tt.cleanDone {
			t.Errorf("CanFinishCleaning(%s)=%v, want %v", tt.status, got, tt.cleanDone)
		}
	}
}

func TestValidTableStatus(t *testing.T) {
	for _, s := range []string{TableAvailable, TableReserved, TableOccupied, TableNeedsCleaning} {
		if !ValidTableStatus(s) {
			t.Errorf("ValidTableStatus(%s)=false, want true", s)
		}
	}
	if ValidTableStatus("CLOSED") {
		t.Error("ValidTableStatus(CLOSED)=true, want false")
	}
}
