// Package geo reconciles an authoritative province list (code -> display name)
// with a secondary, name-keyed city dataset and exposes the result as a
// province-code -> ordered-city-list mapping.
//
// Names from both sources are joined through Normalize, a table-driven fold of
// Arabic letter variants onto their Persian forms plus whitespace cleanup.
// Secondary records that do not resolve to exactly one province code are
// dropped without error. The embedded defaults under data/ carry the Iranian
// provinces (WooCommerce codes) and a city list per province.
//
// The package also ships a small net/http handler returning the mapping (or a
// single province's cities as value/label options) as JSON.
package geo
