package marketplace

// Query documents sent to the marketplace endpoint. The remote accepts a
// query/variables/operationName triple; these are the three operations the
// sourcing engine uses.

const vehicleByVinQuery = `
query VehicleByVin($vin: String!) {
  vehicleSearch(vin: $vin) {
    vehicles {
      id
      vin
      year
      make
      model
      engine
    }
  }
}`

const partTypeSuggestQuery = `
query PartTypeSuggest($prefix: String!) {
  suggest(prefix: $prefix) {
    items
  }
}`

const vendorSearchQuery = `
query VendorPartSearch($accountId: ID!, $vehicleId: ID!, $vin: String!, $partTypeIds: [ID!]!) {
  partSearch(accountId: $accountId, vehicleId: $vehicleId, vin: $vin, partTypeIds: $partTypeIds) {
    products {
      partNumber
      brand
      title
      unitPrice
      listPrice
      quantity
      location
      inStock
      attributes {
        name
        value
      }
      images
    }
  }
}`
