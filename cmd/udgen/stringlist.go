package main

import "strings"

// stringList is a flag.Value collecting repeated -flag occurrences.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
