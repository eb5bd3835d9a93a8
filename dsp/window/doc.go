// Package window generates cosine-sum analysis windows for spectral
// measurements of the delay and its shapers.
package window
