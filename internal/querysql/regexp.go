package querysql

import (
	"regexp"
	"sync"
)

// maxCachedPatterns bounds the compiled pattern cache. Patterns come from
// request input, so the cache is dropped wholesale when it fills.
const maxCachedPatterns = 256

var (
	regexpMu    sync.Mutex
	regexpCache = make(map[string]*regexp.Regexp, maxCachedPatterns)
)

// RegexpFunc implements SQLite's regexp(pattern, value) for the REGEXP
// operator. Register it with go-sqlite3's SQLiteConn.RegisterFunc in a
// ConnectHook. Only TEXT and BLOB values can match; NULL and numbers
// never do.
func RegexpFunc(pattern string, value any) (bool, error) {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		if v == nil {
			return false, nil
		}
		text = string(v)
	default:
		return false, nil
	}

	re, err := compileCached(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(text), nil
}

func compileCached(pattern string) (*regexp.Regexp, error) {
	regexpMu.Lock()
	re, ok := regexpCache[pattern]
	regexpMu.Unlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexpMu.Lock()
	if len(regexpCache) >= maxCachedPatterns {
		clear(regexpCache)
	}
	regexpCache[pattern] = re
	regexpMu.Unlock()
	return re, nil
}
