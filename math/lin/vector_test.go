// SPDX-FileCopyrightText : © 2014-2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package lin

import "testing"

func TestEqV3(t *testing.T) {
	v, a := &V3{1, 2, 3}, &V3{1, 2, 3}
	if !v.Eq(a) {
		t.Errorf(format, v.Dump(), a.Dump())
	}
}

func TestNotEqV3(t *testing.T) {
	v, a := &V3{1, 2, 3}, &V3{1, 2, 4}
	if v.Eq(a) {
		t.Errorf("%s should not equal %s", v.Dump(), a.Dump())
	}
}
