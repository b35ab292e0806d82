package dispatch

import "testing"

func TestExtractRequiredStringMissing(t *testing.T) {
	_, err := Extract(map[string]any{}, []ParamSpec{{Name: "token", Kind: KindString}})
	if err == nil {
		t.Fatal("expected Missing token error")
	}
	if err.Error() != "Missing token" {
		t.Fatalf("error = %q, want %q", err.Error(), "Missing token")
	}
}

func TestExtractRequiredStringWrongType(t *testing.T) {
	_, err := Extract(map[string]any{"token": 5}, []ParamSpec{{Name: "token", Kind: KindString}})
	if err == nil || err.Error() != "Invalid token" {
		t.Fatalf("error = %v, want %q", err, "Invalid token")
	}
}

func TestExtractOptionalStringAbsentIsFine(t *testing.T) {
	args, err := Extract(map[string]any{}, []ParamSpec{{Name: "name", Kind: KindOptionalString}})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if args.OptString("name") != nil {
		t.Fatalf("expected nil for an absent optional string, got %v", args.OptString("name"))
	}
}

func TestExtractNumericCoercesFloatBoolAndString(t *testing.T) {
	specs := []ParamSpec{{Name: "limit", Kind: KindNumeric}}

	cases := []struct {
		name string
		raw  any
		want int
	}{
		{name: "float", raw: float64(25), want: 25},
		{name: "bool_true", raw: true, want: 1},
		{name: "bool_false", raw: false, want: 0},
		{name: "numeric_string", raw: "7", want: 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args, err := Extract(map[string]any{"limit": tc.raw}, specs)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got := args.Int("limit"); got != tc.want {
				t.Fatalf("Int(limit) = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestExtractNumericRejectsNonNumericString(t *testing.T) {
	_, err := Extract(map[string]any{"limit": "not-a-number"}, []ParamSpec{{Name: "limit", Kind: KindNumeric}})
	if err == nil || err.Error() != "Invalid limit" {
		t.Fatalf("error = %v, want %q", err, "Invalid limit")
	}
}

func TestArgsRawExposesNestedObject(t *testing.T) {
	args, err := Extract(map[string]any{"attachment": map[string]any{"name": "a.txt"}}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	raw, ok := args.Raw("attachment")
	if !ok {
		t.Fatal("expected attachment to be present")
	}
	obj, ok := raw.(map[string]any)
	if !ok || obj["name"] != "a.txt" {
		t.Fatalf("attachment = %v, want map with name=a.txt", raw)
	}
}
