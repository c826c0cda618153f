// Package report renders anonymization results for human review.
//
// Three formats share one Writer interface: compact text for terminals,
// JSON for tool integration, and GitHub-flavored Markdown for sharing
// inside the organization. Reports list the detected entities with
// their original texts and aliases; they are review artifacts and must
// stay as local as the documents themselves.
package report
