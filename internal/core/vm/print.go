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

package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Tree returns an indented rendering of n and its descendants with one node
// per line. Property values are prefixed with the property name, embedded
// nodes with "~". Finished tokens show their text.
func (n *Node) Tree() string {
	var b strings.Builder
	n.writeTree(&b, "")
	return b.String()
}

func (n *Node) writeTree(b *strings.Builder, indent string) {
	b.WriteString(n.open.String())
	if n.IsToken() && n.close != nil {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(n.Text()))
	}
	b.WriteByte('\n')

	indent += "  "
	for _, name := range n.names {
		p := n.properties[name]
		label := name
		if p.IsArray() {
			label += "[]"
		}
		if len(p.Nodes) == 0 {
			fmt.Fprintf(b, "%s%s: []\n", indent, label)
		}
		for _, c := range p.Nodes {
			fmt.Fprintf(b, "%s%s: ", indent, label)
			c.writeTree(b, indent)
		}
	}
	for _, c := range n.children {
		if c.Node != nil {
			b.WriteString(indent + "~ ")
			c.Node.writeTree(b, indent)
		}
	}
}
