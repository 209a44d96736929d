// Package persist coordinates writing a bound form back to storage: the
// top-level record plus every nested child collection, reconciled inside a
// single transaction. Storage itself sits behind the Store interface;
// sqlstore and pgxstore provide implementations.
package persist
