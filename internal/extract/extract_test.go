package extract

import "testing"

var testCarriers = []string{"Blue Cross", "Aetna", "Cigna", "UnitedHealth", "Humana", "Kaiser", "Anthem"}

func TestExtractName(t *testing.T) {
	e := New(testCarriers)
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{"my name is", "my name is alice johnson", "Alice", "Johnson"},
		{"mixed case input", "My Name Is ALICE JOHNSON", "Alice", "Johnson"},
		{"i'm", "Hi, I'm bob nguyen", "Bob", "Nguyen"},
		{"i am", "i am maria garcia and I need an appointment", "Maria", "Garcia"},
		{"name is", "the name is james smith", "James", "Smith"},
		{"first and last name is", "first and last name is dana lee", "Dana", "Lee"},
		{"bare two words ignored by default", "alice johnson", "", ""},
		{"unrelated phrase does not fire", "yes please", "", ""},
		{"no name at all", "I'd like to book something", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Extract(tt.input)
			if f.FirstName != tt.wantFirst || f.LastName != tt.wantLast {
				t.Errorf("Extract(%q) name = %q %q, want %q %q",
					tt.input, f.FirstName, f.LastName, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestExtractNameBareFallback(t *testing.T) {
	e := New(testCarriers, WithBareNameFallback())

	f := e.Extract("alice johnson")
	if f.FirstName != "Alice" || f.LastName != "Johnson" {
		t.Fatalf("expected fallback to fire on bare two-word utterance, got %+v", f)
	}

	// The fallback only accepts an utterance that is exactly two words.
	f = e.Extract("book me for tomorrow please")
	if f.FirstName != "" || f.LastName != "" {
		t.Fatalf("fallback fired on a longer sentence: %+v", f)
	}
}

func TestExtractDateOfBirth(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"03/15/1990", "1990-03-15"},
		{"03-15-1990", "1990-03-15"},
		{"1990-03-15", "1990-03-15"},
		{"1990/03/15", "1990-03-15"},
		{"born 3/5/1990", "1990-03-05"},
		{"1990-3-5 is my birthday", "1990-03-05"},
		{"no date here", ""},
		{"just 1990", ""},
	}
	for _, tt := range tests {
		if got := ExtractDateOfBirth(tt.input); got != tt.want {
			t.Errorf("ExtractDateOfBirth(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"call me at 555-123-4567", "555-123-4567"},
		{"555 123 4567", "555-123-4567"},
		{"5551234567", "555-123-4567"},
		{"555/123/4567", "555-123-4567"},
		{"no phone", ""},
		{"12345", ""},
	}
	for _, tt := range tests {
		if got := ExtractPhone(tt.input); got != tt.want {
			t.Errorf("ExtractPhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractEmail(t *testing.T) {
	if got := ExtractEmail("reach me at Alice.J@Example.com thanks"); got != "Alice.J@Example.com" {
		t.Errorf("expected email captured as written, got %q", got)
	}
	if got := ExtractEmail("not an email"); got != "" {
		t.Errorf("expected no match, got %q", got)
	}
}

func TestExtractInsurance(t *testing.T) {
	e := New(testCarriers)

	f := e.Insurance("I have blue cross, member ID: AB1234567")
	if f.InsuranceCarrier != "Blue Cross" {
		t.Errorf("expected Blue Cross, got %q", f.InsuranceCarrier)
	}
	if f.MemberID != "AB1234567" {
		t.Errorf("expected member ID AB1234567, got %q", f.MemberID)
	}

	// First match in list order wins.
	f = e.Insurance("switching from Aetna to Cigna")
	if f.InsuranceCarrier != "Aetna" {
		t.Errorf("expected list-order winner Aetna, got %q", f.InsuranceCarrier)
	}

	f = e.Insurance("member id xy99")
	if f.MemberID != "xy99" {
		t.Errorf("expected member ID captured as written, got %q", f.MemberID)
	}
}

func TestExtractNoFalsePositives(t *testing.T) {
	e := New(testCarriers)
	for _, input := range []string{"", "ok", "hello!", "???", "thanks a lot, see you soon"} {
		if f := e.Extract(input); !f.Empty() {
			t.Errorf("Extract(%q) fired unexpectedly: %+v", input, f)
		}
	}
}

func TestAllMatchersFireOnOneUtterance(t *testing.T) {
	e := New(testCarriers)
	f := e.Extract("my name is alice johnson, dob 03/15/1990, phone 555-123-4567, email alice@example.com")
	if f.FirstName != "Alice" || f.LastName != "Johnson" {
		t.Errorf("name = %q %q", f.FirstName, f.LastName)
	}
	if f.DateOfBirth != "1990-03-15" {
		t.Errorf("dob = %q", f.DateOfBirth)
	}
	if f.Phone != "555-123-4567" {
		t.Errorf("phone = %q", f.Phone)
	}
	if f.Email != "alice@example.com" {
		t.Errorf("email = %q", f.Email)
	}
}
