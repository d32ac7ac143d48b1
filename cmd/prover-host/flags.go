package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// uint64List is a repeatable flag of comma separated u64 words.
type uint64List []uint64

var _ pflag.Value = (*uint64List)(nil)

func (l *uint64List) String() string {
	words := make([]string, len(*l))
	for i, v := range *l {
		words[i] = strconv.FormatUint(v, 10)
	}
	return "[" + strings.Join(words, ",") + "]"
}

func (l *uint64List) Set(s string) error {
	for _, word := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(word), 0, 64)
		if err != nil {
			return fmt.Errorf("%q is not a u64 word", word)
		}
		*l = append(*l, v)
	}
	return nil
}

func (l *uint64List) Type() string {
	return "uint64Slice"
}
