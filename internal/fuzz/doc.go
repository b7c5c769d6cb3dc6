// Package fuzztests houses Go fuzz harnesses for the bundle reader and the
// kernel behind it: arbitrary bytes are decoded as a bundle and, when that
// succeeds, every declaration is checked. The harnesses guard against
// panics; rejections are expected.
package fuzztests
