package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
)

// ExportPage writes a page file that imports every placed component and
// renders it at its canvas position. Returns the written file path.
func (r *Registry) ExportPage(pageName string, items []events.CanvasComponent) (string, error) {
	if pageName == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, pageName)
	}

	pagesDir := filepath.Join(r.dir, "pages")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return "", fmt.Errorf("create pages dir: %w", err)
	}

	path := filepath.Join(pagesDir, pageName+".tsx")
	if err := os.WriteFile(path, []byte(renderPage(pageName, items)), 0o644); err != nil {
		return "", fmt.Errorf("write page %s: %w", pageName, err)
	}

	return path, nil
}

func renderPage(pageName string, items []events.CanvasComponent) string {
	names := make(map[string]bool, len(items))
	for _, item := range items {
		names[item.ComponentName] = true
	}
	imports := make([]string, 0, len(names))
	for name := range names {
		imports = append(imports, name)
	}
	sort.Strings(imports)

	var b strings.Builder
	for _, name := range imports {
		fmt.Fprintf(&b, "import %s from '../components/%s';\n", name, name)
	}

	fmt.Fprintf(&b, "\nexport default function %s() {\n", pageName)
	b.WriteString("  return (\n")
	b.WriteString("    <div className=\"relative w-full min-h-screen bg-gray-50\">\n")

	for _, item := range items {
		style := fmt.Sprintf("left: %g, top: %g", item.Position.X, item.Position.Y)
		if item.Size != nil {
			style += fmt.Sprintf(", width: %g, height: %g", item.Size.Width, item.Size.Height)
		}
		fmt.Fprintf(&b, "      <div className=\"absolute\" style={{ %s }}>\n", style)
		fmt.Fprintf(&b, "        <%s />\n", item.ComponentName)
		b.WriteString("      </div>\n")
	}

	b.WriteString("    </div>\n")
	b.WriteString("  );\n")
	b.WriteString("}\n")

	return b.String()
}
