// Package mw implements the records of morrowind archives (magic TES3).
package mw

import "github.com/mr-karan/esmkit/pkg/esm"

var (
	TagTES3 = esm.TagTES3
	TagGLOB = esm.Tag("GLOB")
	TagSTAT = esm.Tag("STAT")

	tagHEDR = esm.Tag("HEDR")
	tagMAST = esm.Tag("MAST")
	tagDATA = esm.Tag("DATA")
	tagNAME = esm.Tag("NAME")
	tagMODL = esm.Tag("MODL")
	tagFNAM = esm.Tag("FNAM")
	tagFLTV = esm.Tag("FLTV")
)

// fam is shorthand for the family all records in this package belong to.
var fam = esm.Morrowind
