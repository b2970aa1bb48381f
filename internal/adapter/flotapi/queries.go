package flotapi

import "fmt"

// GraphQL query text. Time window variables are RFC3339 instants; the
// platform interprets them as an inclusive [from, to] range.

const companiesQuery = `query Companies {
  companies {
    id
    name
  }
}`

const driversQuery = `query Drivers($companyId: ID!, $page: Int!, $pageSize: Int!) {
  drivers(companyId: $companyId, page: $page, pageSize: $pageSize) {
    page
    pages
    total
    records {
      id
      name
      surname
      email
      nationalId
      licenseNumber
      mobileNumber
      disabled
      activatedAt
    }
  }
}`

// Stats and the preference list travel in one request: they are always
// consumed together and this halves the per-driver request count.
const driverStatsQuery = `query DriverStats($companyId: ID!, $driverId: ID!, $from: DateTime!, $to: DateTime!) {
  driverStats(companyId: $companyId, driverId: $driverId, from: $from, to: $to) {
    accepted
    missed
    offered
    assignedSeconds
    availableSeconds
    score
  }
  driverPreferences(companyId: $companyId, driverId: $driverId) {
    key
    enabled
  }
}`

const driverJourneysQuery = `query DriverJourneys($companyId: ID!, $driverId: ID!, $from: DateTime!, $to: DateTime!) {
  journeys(companyId: $companyId, driverId: $driverId, from: $from, to: $to) {
    id
    assetId
    finishReason
    paymentMethod
    earningsMinorUnits
  }
}`

const tollAccountQuery = `query TollAccount($companyId: ID!) {
  tollAccount(companyId: $companyId) {
    id
  }
}`

const tollChargesQuery = `query TollCharges($accountId: ID!, $driverId: ID!, $from: DateTime!, $to: DateTime!) {
  tollCharges(accountId: $accountId, driverId: $driverId, from: $from, to: $to) {
    totalMinorUnits
  }
}`

// assetSubQuery builds one aliased asset sub-query for batch execution.
func assetSubQuery(alias, companyID, assetID string) string {
	return fmt.Sprintf("%s: asset(companyId: %q, id: %q) { id make model regPlate }", alias, companyID, assetID)
}
