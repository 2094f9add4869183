package qcbor

import "unicode/utf8"

func isUTF8Valid(b []byte) bool { return utf8.Valid(b) }
