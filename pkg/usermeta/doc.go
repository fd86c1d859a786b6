// Package usermeta persists selected checkout fields per user so returning
// customers find their invoice details prefilled.
package usermeta
