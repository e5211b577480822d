package model

import "strings"

// ShortTag reduces a full morphological tag to the class used by the
// statistical tagger: punctuation tags (F...) are kept whole, every other
// tag keeps its first two characters. For contractions (tags joined with
// "+") the first component decides.
//
//	NCMS000 -> NC, VMIP3S0 -> VM, Fp -> Fp, SPS00+DA0MS0 -> SP
func ShortTag(tag string) string {
	if i := strings.IndexByte(tag, '+'); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || tag[0] == 'F' || len(tag) <= 2 {
		return tag
	}
	return tag[:2]
}

// SensePOS returns the key under which sense inventories index a tag:
// its first character.
func SensePOS(tag string) string {
	if tag == "" {
		return ""
	}
	return tag[:1]
}
