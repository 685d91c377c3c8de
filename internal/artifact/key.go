package artifact

import (
	"fmt"
	"regexp"
	"time"
)

// Object key namespaces within the bucket.
const (
	nsPackage = "apks"
	nsIcon    = "icons"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// objectKey derives a storage key from a namespace, a creation timestamp
// at millisecond resolution, and the client-supplied filename with all
// characters outside [A-Za-z0-9.-] replaced by underscores. Uniqueness
// rests on timestamp granularity: two uploads of the same filename within
// one millisecond collide. Callers that need strict collision-freedom
// must add a random suffix themselves.
func objectKey(namespace string, t time.Time, filename string) string {
	return fmt.Sprintf("%s/%d-%s", namespace, t.UnixMilli(), unsafeKeyChars.ReplaceAllString(filename, "_"))
}
