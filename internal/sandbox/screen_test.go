package sandbox

import (
	"errors"
	"testing"
)

func assertDisallowed(t *testing.T, source, subtype string) {
	t.Helper()
	err := Screen(source, subtype)
	if err == nil {
		t.Fatalf("expected rejection for source:\n%s", source)
	}
	var sbErr *Error
	if !errors.As(err, &sbErr) || sbErr.Kind != ErrDisallowedPattern {
		t.Fatalf("expected disallowed_pattern, got: %v", err)
	}
}

func TestScreen_CleanSourcePasses(t *testing.T) {
	source := `import matplotlib.pyplot as plt
import numpy as np
x = np.linspace(0, 10, 100)
plt.plot(x, np.sin(x), label="v(t)")
plt.legend()
plt.savefig("out.png")
`
	if err := Screen(source, "pyplot"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestScreen_BannedPatterns(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"subprocess", "import subprocess\nsubprocess.run(['ls'])"},
		{"os.system", "import math\nos.system('rm -rf /')"},
		{"eval", "eval('2+2')"},
		{"exec", "exec('print(1)')"},
		{"dunder import", "__import__('os')"},
		{"importlib", "import importlib"},
		{"socket", "import socket"},
		{"shutil", "import shutil"},
		{"open for write", "f = open('data.txt', 'w')"},
		{"open for append", "f = open('data.txt', 'ab')"},
		{"pathlib write", "p.write_text('x')"},
		{"globals", "globals()['x'] = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDisallowed(t, tt.source, "pyplot")
		})
	}
}

func TestScreen_OpenForReadAllowed(t *testing.T) {
	// Read-mode open is harmless inside the scrubbed sandbox dir.
	if err := Screen("f = open('data.csv', 'r')", "pyplot"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestScreen_ImportOutsideAllowList(t *testing.T) {
	assertDisallowed(t, "import pandas as pd\n", "pyplot")
	assertDisallowed(t, "from scipy import optimize\n", "pyplot")
	// networkx is fine for graph renders, not for circuit renders.
	assertDisallowed(t, "import networkx as nx\n", "schemdraw")
	if err := Screen("import networkx as nx\n", "networkx"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestScreen_SubmoduleOfAllowedRootPasses(t *testing.T) {
	source := "from matplotlib.patches import Circle\nimport schemdraw.elements as elm\n"
	if err := Screen(source, "schemdraw"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestScreen_UnknownSubtypeRejected(t *testing.T) {
	assertDisallowed(t, "import math\n", "lua")
}
