// Package phonetic maps phonetic tokens onto sound classes. The class
// tables themselves live in LingPy; this package asks a Python interpreter
// for them and exposes the answer behind a small Classifier interface.
package phonetic
