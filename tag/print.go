// Copyright 2026 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tag

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// The textual form of tags is a compact rendering used for logging, test
// output and the agast command. It is not a serialization format.
//
//	<!doctype a="1">   Doctype
//	<>  </>            fragment (flags precede the closing bracket: <#>)
//	<*Lang:Type a=1>   node opener; flags precede the name
//	</Type>            node closer
//	name:  name[]:     reference; a trailing $ marks a gap reference
//	'text'             literal
//	<//>  null  []  ^^^  gap, null, array and shift

func (f Flags) String() string {
	var b strings.Builder
	if f.Token {
		b.WriteByte('*')
	}
	if f.Escape {
		b.WriteByte('@')
	}
	if f.Trivia {
		b.WriteByte('#')
	}
	if f.Expression {
		b.WriteByte('+')
	}
	if f.Intrinsic {
		b.WriteByte('~')
	}
	if f.HasGap {
		b.WriteByte('$')
	}
	return b.String()
}

func (a Attributes) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		writeValue(&b, a[k])
	}
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case string:
		b.WriteString(strconv.Quote(x))
	case fmt.Stringer:
		b.WriteString(x.String())
	default:
		fmt.Fprint(b, x)
	}
}

func (*Start) String() string { return "<start>" }

func (t *Doctype) String() string {
	return "<!doctype" + t.Attributes.String() + ">"
}

func (t *OpenFragment) String() string {
	return "<" + t.Flags.String() + t.Attributes.String() + ">"
}

func (*CloseFragment) String() string { return "</>" }

func (t *OpenNode) String() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(t.Flags.String())
	if t.Language != "" {
		b.WriteString(t.Language)
		b.WriteByte(':')
	}
	b.WriteString(t.Type)
	b.WriteString(t.Attributes.String())
	b.WriteByte('>')
	return b.String()
}

func (t *CloseNode) String() string {
	if t.Language != "" {
		return "</" + t.Language + ":" + t.Type + ">"
	}
	return "</" + t.Type + ">"
}

func (t *Reference) String() string {
	s := t.Name
	if t.IsArray {
		s += "[]"
	}
	if t.HasGap {
		s += "$"
	}
	return s + ":"
}

func (t *Literal) String() string { return "'" + strings.ReplaceAll(t.Value, "'", `\'`) + "'" }

func (*Gap) String() string   { return "<//>" }
func (*Null) String() string  { return "null" }
func (*Array) String() string { return "[]" }
func (*Shift) String() string { return "^^^" }

func (t *Effect) String() string {
	var b strings.Builder
	b.WriteString("!")
	b.WriteString(t.Name)
	if t.Value != nil {
		b.WriteByte(' ')
		writeValue(&b, t.Value)
	}
	return b.String()
}

// Strings returns the textual form of each tag in tags.
func Strings(tags []Tag) []string {
	s := make([]string, len(tags))
	for i, t := range tags {
		s[i] = t.String()
	}
	return s
}
