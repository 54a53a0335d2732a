package chat

import "testing"

func TestMessageJSON(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Text("hi"), `{"text":"hi"}`},
		{Colored("Alex joined the game", "yellow"), `{"text":"Alex joined the game","color":"yellow"}`},
		{Errorf("Unknown chop mode: %s", "timber"), `{"text":"Unknown chop mode: timber","color":"red"}`},
		{Join(Colored("<Alex> ", "white"), Text("timber!")), `{"text":"","extra":[{"text":"<Alex> ","color":"white"},{"text":"timber!"}]}`},
		{Text("a & b > c"), `{"text":"a & b > c"}`},
	}
	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
