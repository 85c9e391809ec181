package wplace

// GlobalPalette is the fixed 64-entry RGB table. Canonical index 0 is
// transparent and index 1 is opaque black; both share RGB (0,0,0) and are
// told apart only by the PNG tRNS flag at encode/decode time.
//
// Copied from _examples/original_source/src/lib.rs's PALETTE constant,
// the actual Wplace color table.
var GlobalPalette = [64][3]uint8{
	{0, 0, 0},
	{0, 0, 0},
	{60, 60, 60},
	{120, 120, 120},
	{170, 170, 170},
	{210, 210, 210},
	{255, 255, 255},
	{96, 0, 24},
	{165, 14, 30},
	{237, 28, 36},
	{250, 128, 114},
	{228, 92, 26},
	{255, 127, 39},
	{246, 170, 9},
	{249, 221, 59},
	{255, 250, 188},
	{156, 132, 49},
	{197, 173, 49},
	{232, 212, 95},
	{74, 107, 58},
	{90, 148, 74},
	{132, 197, 115},
	{14, 185, 104},
	{19, 230, 123},
	{135, 255, 94},
	{12, 129, 110},
	{16, 174, 166},
	{19, 225, 190},
	{15, 121, 159},
	{96, 247, 242},
	{187, 250, 242},
	{40, 80, 158},
	{64, 147, 228},
	{125, 199, 255},
	{77, 49, 184},
	{107, 80, 246},
	{153, 177, 251},
	{74, 66, 132},
	{122, 113, 196},
	{181, 174, 241},
	{120, 12, 153},
	{170, 56, 185},
	{224, 159, 249},
	{203, 0, 122},
	{236, 31, 128},
	{243, 141, 169},
	{155, 82, 73},
	{209, 128, 120},
	{250, 182, 164},
	{104, 70, 52},
	{149, 104, 42},
	{219, 164, 99},
	{123, 99, 82},
	{156, 132, 107},
	{214, 181, 148},
	{209, 128, 81},
	{248, 178, 119},
	{255, 197, 165},
	{109, 100, 63},
	{148, 140, 107},
	{205, 197, 158},
	{51, 57, 65},
	{109, 117, 141},
	{179, 185, 209},
}
