package notify

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pinpanclub/pinpanclub-backend/internal/realtime"
)

//go:embed locales.yaml
var localesYAML []byte

type localeEntry struct {
	ES string `yaml:"es"`
	EN string `yaml:"en"`
	ZH string `yaml:"zh"`
}

var catalog = mustLoadCatalog()

func mustLoadCatalog() map[string]localeEntry {
	var c map[string]localeEntry
	if err := yaml.Unmarshal(localesYAML, &c); err != nil {
		panic(fmt.Sprintf("notify: bad locale catalog: %v", err))
	}
	return c
}

// text renders the catalog entry for key in every locale with the same
// positional args.
func text(key string, args ...any) *realtime.LocalizedText {
	entry, ok := catalog[key]
	if !ok {
		return nil
	}
	return &realtime.LocalizedText{
		ES: fmt.Sprintf(entry.ES, args...),
		EN: fmt.Sprintf(entry.EN, args...),
		ZH: fmt.Sprintf(entry.ZH, args...),
	}
}
