// Package sites knows which hosting site a URL belongs to, how to pull
// a stable item identifier out of it, and how to probe whether the item
// is still available.
package sites
