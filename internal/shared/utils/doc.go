// Package utils holds input validation shared by the request surfaces.
package utils
