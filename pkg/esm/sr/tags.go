// Package sr implements the records of skyrim archives (magic TES4).
package sr

import "github.com/mr-karan/esmkit/pkg/esm"

var (
	TagTES4 = esm.TagTES4
	TagGLOB = esm.Tag("GLOB")
	TagASPC = esm.Tag("ASPC")
	TagKEYM = esm.Tag("KEYM")

	tagHEDR = esm.Tag("HEDR")
	tagCNAM = esm.Tag("CNAM")
	tagSNAM = esm.Tag("SNAM")
	tagMAST = esm.Tag("MAST")
	tagDATA = esm.Tag("DATA")
	tagONAM = esm.Tag("ONAM")
	tagINTV = esm.Tag("INTV")
	tagINCC = esm.Tag("INCC")
	tagEDID = esm.Tag("EDID")
	tagFNAM = esm.Tag("FNAM")
	tagFLTV = esm.Tag("FLTV")
	tagOBND = esm.Tag("OBND")
	tagRDAT = esm.Tag("RDAT")
	tagBNAM = esm.Tag("BNAM")
	tagVMAD = esm.Tag("VMAD")
	tagFULL = esm.Tag("FULL")
	tagMODL = esm.Tag("MODL")
	tagMODT = esm.Tag("MODT")
	tagYNAM = esm.Tag("YNAM")
	tagZNAM = esm.Tag("ZNAM")
	tagKSIZ = esm.Tag("KSIZ")
	tagKWDA = esm.Tag("KWDA")
)

var fam = esm.Skyrim
