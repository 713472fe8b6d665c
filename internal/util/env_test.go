package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value      string
		defaultVal bool
		want       bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
		{"garbage", false, false},
		{" true ", false, true},
	}
	for _, c := range cases {
		t.Setenv("ZAMOWBOT_TEST_BOOL", c.value)
		if got := ParseBoolEnv("ZAMOWBOT_TEST_BOOL", c.defaultVal); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.defaultVal, got, c.want)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("ZAMOWBOT_TEST_STR", "")
	if got := EnvOrDefault("ZAMOWBOT_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
	t.Setenv("ZAMOWBOT_TEST_STR", "value")
	if got := EnvOrDefault("ZAMOWBOT_TEST_STR", "fallback"); got != "value" {
		t.Errorf("got %q", got)
	}
}
