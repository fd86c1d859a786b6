// Package formstate models the checkout controls in memory and runs the same
// event handlers the browser runtime does: the province/city cascade, the
// person-type toggle, and the invoice-driven required toggle. The terminal
// renderer drives it interactively and tests use it to pin the controller
// behaviour down without a browser.
//
// Every handler runs under the Form's lock, so one handler's mutations are
// never observed half applied. Events raised by a handler are delivered after
// the lock is released.
package formstate
