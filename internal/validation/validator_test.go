// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package validation

import (
	"strings"
	"testing"
)

type eventShape struct {
	Date  string `validate:"required,dateymd"`
	Time  string `validate:"required,hhmm"`
	Title string `validate:"required"`
}

func TestValidateStructOK(t *testing.T) {
	s := eventShape{Date: "2025-10-05", Time: "13:30", Title: "Earthquake"}
	if err := ValidateStruct(&s); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
}

func TestDateFormat(t *testing.T) {
	tests := []struct {
		date string
		ok   bool
	}{
		{"2025-10-05", true},
		{"2025-01-01", true},
		{"2025-1-5", false},   // not zero-padded
		{"05-10-2025", false}, // wrong order
		{"2025/10/05", false},
		{"2025-10-05T00:00", false},
		{"20251005", false},
	}
	for _, tt := range tests {
		s := eventShape{Date: tt.date, Time: "13:30", Title: "x"}
		err := ValidateStruct(&s)
		if tt.ok && err != nil {
			t.Errorf("date %q rejected: %v", tt.date, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("date %q accepted, want rejection", tt.date)
		}
	}
}

func TestTimeFormat(t *testing.T) {
	tests := []struct {
		hhmm string
		ok   bool
	}{
		{"00:00", true},
		{"13:30", true},
		{"23:59", true},
		{"24:00", false},
		{"13:60", false},
		{"9:30", false}, // not zero-padded
		{"13.30", false},
		{"13:30:00", false},
	}
	for _, tt := range tests {
		s := eventShape{Date: "2025-10-05", Time: tt.hhmm, Title: "x"}
		err := ValidateStruct(&s)
		if tt.ok && err != nil {
			t.Errorf("time %q rejected: %v", tt.hhmm, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("time %q accepted, want rejection", tt.hhmm)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		s    eventShape
		want string
	}{
		{"missing title", eventShape{Date: "2025-10-05", Time: "13:30"}, "title required"},
		{"bad date", eventShape{Date: "bogus", Time: "13:30", Title: "x"}, "date (YYYY-MM-DD) required"},
		{"bad time", eventShape{Date: "2025-10-05", Time: "bogus", Title: "x"}, "time (HH:mm) required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.s)
			if err == nil {
				t.Fatal("want validation error")
			}
			if err.Error() != tt.want {
				t.Errorf("message = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestErrorJoinsMultipleFields(t *testing.T) {
	err := ValidateStruct(&eventShape{})
	if err == nil {
		t.Fatal("want validation error")
	}
	if len(err.Fields()) != 3 {
		t.Fatalf("got %d field errors, want 3", len(err.Fields()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("joined message = %q, want semicolon-separated", err.Error())
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator must return the same instance")
	}
}
