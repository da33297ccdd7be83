// Package classifier turns a photo into a (defect, location) pair using a
// two-head network served by an inference server.
package classifier

// DefectLabels are the defect head classes in output order.
var DefectLabels = []string{"때", "곰팡이", "녹", "물때"}

// LocationLabels are the location head classes in output order.
var LocationLabels = []string{
	"가구", "가스레인지", "냄비/후라이팬", "배관류", "부품",
	"세탁기", "수전", "스테인리스", "식기류", "싱크대",
	"에어컨", "에어프라이어", "오븐", "욕실액세서리", "유리",
	"인덕션", "전자레인지", "종이벽지", "창틀/문틀",
	"타일/페인트벽", "프레임", "후드",
}

// LocationScope lists the locations allowed for each defect index.
var LocationScope = map[int][]int{
	0: {1, 2, 8, 9, 11, 12, 15, 16, 17, 19, 21}, // grease
	1: {5, 10, 17, 18, 19},                      // mold
	2: {0, 1, 3, 4, 6, 13, 20},                  // rust
	3: {6, 7, 14},                               // water stain
}

// MaskValue replaces the logits of disallowed locations.
const MaskValue float32 = -1e9

// Prediction is the classifier output.
type Prediction struct {
	Defect        string `json:"problem"`
	Location      string `json:"location"`
	DefectIndex   int    `json:"-"`
	LocationIndex int    `json:"-"`
	// Unmasked is set when the defect had no allowed locations and the
	// plain arg-max was used.
	Unmasked bool `json:"-"`
}
