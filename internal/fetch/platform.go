package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board whose detail pages have a known layout.
type Platform string

const (
	PlatformPythonJobs Platform = "python-jobs"
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformUnknown    Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"jobs.python.org", PlatformPythonJobs},
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
}

// DetectPlatform identifies the job board serving urlStr.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns description selectors for platform,
// most specific first.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformPythonJobs:
		return []string{".job-description", "article.text", ".job-detail-container"}
	case PlatformGreenhouse:
		return []string{".job__description", "#content", ".job-post-container"}
	case PlatformLever:
		return []string{".posting-page", ".posting-description", ".content"}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns elements stripped before text extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".application-form",
		".apply-button-container",
		".eeo-statement",
		".social-share",
	}
	switch platform {
	case PlatformPythonJobs:
		return append(common, ".listing-company", ".job-meta")
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", ".voluntary-self-id")
	case PlatformLever:
		return append(common, ".apply-section", ".posting-apply")
	default:
		return common
	}
}
