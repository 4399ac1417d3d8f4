package kafka

import (
	"reflect"
	"testing"
)

func TestBrokers(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"localhost:9092", []string{"localhost:9092"}},
		{"a:9092, b:9092,", []string{"a:9092", "b:9092"}},
		{" kafka-1:9092 ,kafka-2:9092", []string{"kafka-1:9092", "kafka-2:9092"}},
		{"", nil},
	}
	for _, tc := range cases {
		if got := Brokers(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Brokers(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
