package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/analyzer"
)

func TestScanImports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "side effect import",
			src:      `import "./a"; doStuff();`,
			expected: []string{"./a"},
		},
		{
			name: "import clauses in source order",
			src: `import def from './default.js';
import * as ns from "./ns.js";
import { a, b as c } from "./named.js";
import d, { e } from "./mixed.js";
`,
			expected: []string{"./default.js", "./ns.js", "./named.js", "./mixed.js"},
		},
		{
			name: "multi-line named import",
			src: `import {
  one,
  two,
} from "./many";`,
			expected: []string{"./many"},
		},
		{
			name:     "duplicates are reported",
			src:      `import "./a"; import { x } from "./a";`,
			expected: []string{"./a", "./a"},
		},
		{
			name: "dynamic import and require are invisible",
			src: `const lazy = import("./lazy");
const cjs = require("./cjs");
console.log(import.meta.url);`,
			expected: nil,
		},
		{
			name:     "re-exports are invisible",
			src:      `export { x } from "./x"; export * from "./all";`,
			expected: nil,
		},
		{
			name: "comments and strings are ignored",
			src: `// import "./commented";
/* import "./block"
   spanning lines */
const s = 'import "./in-string"';
const t = ` + "`import \"./in-template\"`" + `;
import "./real";`,
			expected: []string{"./real"},
		},
		{
			name:     "property named import",
			src:      `const o = { import: 1 }; o.import("./x");`,
			expected: nil,
		},
		{
			name:     "type only import",
			src:      `import type { T } from "./types"; import { v } from "./values";`,
			expected: []string{"./values"},
		},
		{
			name:     "escaped quotes",
			src:      `import 'it\'s.js';`,
			expected: []string{"it's.js"},
		},
		{
			name:     "unbalanced quote in regular expression",
			src:      `const re = /"/; import "./after";`,
			expected: []string{"./after"},
		},
		{
			name:     "regular expression with class and flags",
			src:      `if (/[/'"]\//gi.test(s)) {} import "./after";`,
			expected: []string{"./after"},
		},
		{
			name:     "division is not a regular expression",
			src:      `const half = total / 2, r = (a) / b; import "./after"; x = y / "z";`,
			expected: []string{"./after"},
		},
		{
			name:     "hex and unicode escapes",
			src:      `import a from "./\x41"; import b from './\u0042'; import "./\u{43}";`,
			expected: []string{"./A", "./B", "./C"},
		},
		{
			name:     "surrogate pair escape",
			src:      `import "./\uD83D\uDE00.js";`,
			expected: []string{"./\U0001F600.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := analyzer.ScanImports("test.js", tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestScanImports_InvalidEscape(t *testing.T) {
	t.Parallel()

	_, err := analyzer.ScanImports("test.js", `import "./\xZZ";`)
	require.ErrorContains(t, err, "invalid escape sequence")
}
