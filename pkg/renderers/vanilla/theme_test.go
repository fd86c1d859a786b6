package vanilla

import theme "github.com/goliatone/go-theme"

func testManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "bazaar",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#0f766e"},
		Assets: theme.Assets{
			Prefix: "/themes/bazaar",
			Files: map[string]string{
				ThemeStylesheetAsset: "checkout.css",
			},
		},
	}
}
