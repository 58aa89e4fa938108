package mapping

import (
	"strings"
)

// KeyClassifier splits raw tag keys into a namespace (the tag type) and a
// local key.
type KeyClassifier struct {
	problemChars string
	defaultType  string
}

// NewKeyClassifier returns a classifier that rejects all keys containing
// one of problemChars. Keys without a colon get defaultType as namespace.
func NewKeyClassifier(problemChars, defaultType string) *KeyClassifier {
	return &KeyClassifier{problemChars: problemChars, defaultType: defaultType}
}

// Classify returns the namespace and local key of rawKey. Only the first
// colon separates the namespace, further colons are part of the local
// key ("addr:street:name" is "addr" and "street:name").
// ok is false if the key contains a problem character.
func (kc *KeyClassifier) Classify(rawKey string) (namespace, localKey string, ok bool) {
	if strings.ContainsAny(rawKey, kc.problemChars) {
		return "", "", false
	}
	if i := strings.IndexByte(rawKey, ':'); i >= 0 {
		return rawKey[:i], rawKey[i+1:], true
	}
	return kc.defaultType, rawKey, true
}
