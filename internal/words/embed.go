package words

import _ "embed"

//go:embed default_words.json
var defaultWords []byte
