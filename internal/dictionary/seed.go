package dictionary

// Seed lists transcribed verbatim from spec.md §6 "Dictionary payload
// (normative, partial)". Order within a slice carries no meaning; the
// dictionary itself sorts postpositions longest-first on demand (see
// Postpositions).

var postpositionsOneChar = []string{
	"을", "를", "이", "가", "은", "는", "의", "에", "로", "과", "와", "도", "만",
}

var postpositionsTwoChar = []string{
	"에서", "으로", "부터", "까지", "하고", "에게", "한테", "에다", "보다",
}

// suffixLike are tokens that behave like a trailing postposition for split
// purposes (e.g. counting words: "세번" -> "세", "번") but are not themselves
// grammatical particles.
var suffixLike = []string{
	"번",
}

// protectedNouns must never be split even though they end in a byte sequence
// that also happens to be a postposition (나이 = 나 + 이 would otherwise
// split, but 나이 "age" is a single noun).
var protectedNouns = []string{
	"나이", "거리", "자리", "머리", "다리", "가지", "먼지", "연기", "놀이", "도시",
	"차이", "배열", "함수", "변수", "조건", "반복", "타입", "객체", "클래스", "파일",
	"경로", "문자열", "숫자", "결과", "값", "인덱스", "크기", "내용", "이름", "확장자",
	"디렉토리", "온도",
}

// rangeLoopNouns are range/loop/control keywords that, for split purposes,
// behave as nouns (they must not be carved into smaller morphemes).
var rangeLoopNouns = []string{
	"부터", "까지", "미만", "초과", "이하", "이상", "반복", "반복한다", "각각",
	"만약", "아니면", "동안", "반환", "가져오기", "문자", "논리", "참", "거짓",
}

var builtinVars = []string{
	"경로", "절대경로", "상대경로", "작업디렉토리", "홈디렉토리", "임시디렉토리",
}

var builtinFuncs = []string{
	"출력", "타입", "길이", "분리", "찾기", "바꾸기", "대문자", "소문자",
	"정수", "실수", "반올림", "올림", "내림", "절대값", "제곱근", "제곱",
	"파일_읽기", "파일_쓰기", "절대경로인가", "디렉토리인가",
	"정렬한다", "역순으로_나열한다", "추가한다", "합친다",
	"읽기쉬운크기", "고유아이디", "해시",
	"데이터베이스_연결", "질의", "소켓_열기",
}

func seed(d *Dictionary) {
	d.AddAll(postpositionsOneChar, Postposition)
	d.AddAll(postpositionsTwoChar, Postposition)
	d.AddAll(suffixLike, Postposition)
	d.AddAll(rangeLoopNouns, Noun)
	d.AddAll(protectedNouns, Noun)
	d.AddAll(builtinVars, BuiltinVar)
	d.AddAll(builtinFuncs, BuiltinFunc)
}
